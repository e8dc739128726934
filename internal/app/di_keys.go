package app

import (
	"fmt"

	"github.com/allisson/keyring/internal/http"
	keysHTTP "github.com/allisson/keyring/internal/keys/http"
	keysRepository "github.com/allisson/keyring/internal/keys/repository"
	keysUseCase "github.com/allisson/keyring/internal/keys/usecase"
)

// KeyRepository returns the key repository based on database driver.
func (c *Container) KeyRepository() (keysUseCase.KeyRepository, error) {
	var err error
	c.keyRepositoryInit.Do(func() {
		c.keyRepository, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepository"]; exists {
		return nil, storedErr
	}
	return c.keyRepository, nil
}

// KeyUseCase returns the key lifecycle use case instance.
func (c *Container) KeyUseCase() (keysUseCase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// RotationUseCase returns the key rotation use case instance.
func (c *Container) RotationUseCase() (keysUseCase.RotationUseCase, error) {
	var err error
	c.rotationUseCaseInit.Do(func() {
		c.rotationUseCase, err = c.initRotationUseCase()
		if err != nil {
			c.initErrors["rotationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationUseCase"]; exists {
		return nil, storedErr
	}
	return c.rotationUseCase, nil
}

// BatchCryptoUseCase returns the batch crypto use case instance.
func (c *Container) BatchCryptoUseCase() (keysUseCase.BatchCryptoUseCase, error) {
	var err error
	c.batchUseCaseInit.Do(func() {
		c.batchUseCase, err = c.initBatchCryptoUseCase()
		if err != nil {
			c.initErrors["batchUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["batchUseCase"]; exists {
		return nil, storedErr
	}
	return c.batchUseCase, nil
}

// HTTPServer returns the HTTP server instance with routes configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// initKeyRepository creates the key repository instance.
func (c *Container) initKeyRepository() (keysUseCase.KeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return keysRepository.NewMySQLKeyRepository(db), nil
	case "postgres":
		return keysRepository.NewPostgreSQLKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// keyConfig builds the key lifecycle policy from configuration.
func (c *Container) keyConfig() keysUseCase.KeyConfig {
	return keysUseCase.KeyConfig{
		MaxAge:              c.config.KeyMaxAge,
		MinRotationInterval: c.config.KeyMinRotationInterval,
		SystemVersion:       c.config.SystemVersion,
	}
}

// batchConfig builds the batch executor policy from configuration.
func (c *Container) batchConfig() keysUseCase.BatchConfig {
	return keysUseCase.BatchConfig{
		Size:                 c.config.BatchSize,
		MaxConcurrentCalls:   int64(c.config.BatchMaxConcurrentCalls),
		MaxRetries:           uint64(c.config.BatchMaxRetries),
		RetryInitialInterval: c.config.BatchRetryInitialInterval,
	}
}

// initKeyUseCase creates the key lifecycle use case with all its dependencies.
func (c *Container) initKeyUseCase() (keysUseCase.KeyUseCase, error) {
	keyRepo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key use case: %w", err)
	}

	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for key use case: %w", err)
	}

	useCase := keysUseCase.NewKeyUseCase(keyRepo, keyProvider, c.KeyCache(), c.keyConfig())

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
	}

	return keysUseCase.NewKeyUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initRotationUseCase creates the rotation use case with all its dependencies.
func (c *Container) initRotationUseCase() (keysUseCase.RotationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for rotation use case: %w", err)
	}

	keyRepo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for rotation use case: %w", err)
	}

	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for rotation use case: %w", err)
	}

	useCase := keysUseCase.NewRotationUseCase(
		txManager,
		keyRepo,
		keyProvider,
		c.KeyCache(),
		c.keyConfig(),
		c.batchConfig(),
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for rotation use case: %w", err)
	}

	return keysUseCase.NewRotationUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initBatchCryptoUseCase creates the batch crypto use case with all its dependencies.
func (c *Container) initBatchCryptoUseCase() (keysUseCase.BatchCryptoUseCase, error) {
	keyUseCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for batch crypto use case: %w", err)
	}

	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for batch crypto use case: %w", err)
	}

	useCase := keysUseCase.NewBatchCryptoUseCase(keyUseCase, keyProvider, c.batchConfig())

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for batch crypto use case: %w", err)
	}

	return keysUseCase.NewBatchCryptoUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	keyUseCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for http server: %w", err)
	}

	rotationUseCase, err := c.RotationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation use case for http server: %w", err)
	}

	batchUseCase, err := c.BatchCryptoUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get batch crypto use case for http server: %w", err)
	}

	routerCfg := http.RouterConfig{
		KeyHandler:       keysHTTP.NewKeyHandler(keyUseCase, rotationUseCase, logger),
		CryptoHandler:    keysHTTP.NewCryptoHandler(batchUseCase, logger),
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
		RateLimitEnabled: c.config.RateLimitEnabled,
		RateLimitRPS:     c.config.RateLimitRequestsPerSec,
		RateLimitBurst:   c.config.RateLimitBurst,
		MetricsNamespace: c.config.MetricsNamespace,
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if metricsProvider != nil {
		routerCfg.MeterProvider = metricsProvider.MeterProvider()
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(routerCfg)

	return server, nil
}

// initMetricsServer creates the Prometheus metrics server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		metricsProvider,
	), nil
}

// Package main provides the MIO coefficient HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/UndeadFairy/MagneticModel/internal/adapter/store"
	"github.com/UndeadFairy/MagneticModel/internal/adapter/store/jsonfile"
	"github.com/UndeadFairy/MagneticModel/internal/adapter/store/ncmodel"
	"github.com/UndeadFairy/MagneticModel/internal/config"
	httpHandler "github.com/UndeadFairy/MagneticModel/internal/http"
	"github.com/UndeadFairy/MagneticModel/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("mio-server version %s\n", version)
		return
	}

	// Load configuration from environment.
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	log.Printf("Starting MIO coefficient server...")
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Max series points: %d", cfg.MaxSeriesPoints)

	// Initialize stores. Missing directories are skipped so that the
	// server still serves inline models.
	var models store.Chain
	if dirExists(cfg.ModelDir) {
		log.Printf("JSON model directory: %s", cfg.ModelDir)
		models = append(models, jsonfile.NewModelStore(cfg.ModelDir))
	} else {
		log.Printf("JSON model directory not found, skipping: %s", cfg.ModelDir)
	}
	if dirExists(cfg.NetCDFDir) {
		log.Printf("NetCDF model directory: %s", cfg.NetCDFDir)
		models = append(models, ncmodel.NewStore(cfg.NetCDFDir))
	} else {
		log.Printf("NetCDF model directory not found, skipping: %s", cfg.NetCDFDir)
	}

	var loader store.ModelLoader
	if len(models) > 0 {
		loader = models
	} else {
		log.Printf("No model stores configured (inline models only)")
	}

	// Initialize use case.
	coefficientsUC := usecase.NewCoefficientsUseCase(loader, cfg.MaxSeriesPoints)

	// Setup router.
	router := httpHandler.SetupRouter(coefficientsUC, cfg)

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("API endpoints:")
	log.Printf("  - GET/POST /v1/mio/coefficients")
	log.Printf("  - GET/POST /v1/mio/series")
	log.Printf("  - GET /v1/time/magnetic")
	log.Printf("  - GET /v1/models")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("MIO Coefficient Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  mio-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  GIN_MODE                Gin mode: debug, release or test (default: debug)")
	fmt.Println("  MODEL_DIR               JSON model directory (default: ./data/models)")
	fmt.Println("  NETCDF_MODEL_DIR        NetCDF model directory (default: ./data/netcdf)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  MAX_SERIES_POINTS       Maximum number of points per series request (default: 10000)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  mio-server")
	fmt.Println()
	fmt.Println("  # Start server on custom port")
	fmt.Println("  PORT=3000 mio-server")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                   Health check")
	fmt.Println("  GET  /v1/models                List stored models")
	fmt.Println("  GET  /v1/mio/coefficients      Evaluate a stored model")
	fmt.Println("  POST /v1/mio/coefficients      Evaluate an inline or stored model")
	fmt.Println("  GET  /v1/mio/series            Coefficient time series of a stored model")
	fmt.Println("  POST /v1/mio/series            Coefficient time series of an inline or stored model")
	fmt.Println("  GET  /v1/time/magnetic         Year fraction, sub-solar point and MUT")
	fmt.Println()
}

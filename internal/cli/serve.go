package cli

import (
	"fmt"
	"os"

	"github.com/Mugil-an/carcheckmate/internal/cache"
	"github.com/Mugil-an/carcheckmate/internal/ocr"
	"github.com/Mugil-an/carcheckmate/internal/pipeline"
	"github.com/Mugil-an/carcheckmate/internal/server"
	"github.com/Mugil-an/carcheckmate/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	servePort string
	uploadDir string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP upload server",
	Long: `Serve starts an HTTP server accepting document uploads:
- POST /upload takes a service document and returns its summary
- GET /files/<name> serves the generated JSON and CSV artifacts
- GET /events lists the persisted service history

Environment:
  DATABASE_URL  PostgreSQL DSN for event persistence (optional)
  PORT          listen port (overrides --port)

Example:
  carcheckmate serve
  carcheckmate serve --port 9090 --upload-dir /var/lib/carcheckmate/uploads`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "8080", "listen port")
	serveCmd.Flags().StringVar(&uploadDir, "upload-dir", "uploads", "directory for stored uploads")
	serveCmd.Flags().StringVar(&outDir, "out", "ocr_output", "output directory for JSON and CSV artifacts")
	serveCmd.Flags().IntVar(&pageSegMode, "psm", 3, "Tesseract page segmentation mode")
	serveCmd.Flags().IntVar(&rasterDPI, "dpi", 300, "rasterization DPI for PDF pages")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	cfg := buildConfig()
	cfg.Server.Port = servePort
	cfg.Server.UploadDir = uploadDir
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DB.DSN = dsn
	}

	engine := ocr.NewTesseract(cfg.OCR)
	rasterizer := ocr.NewPopplerRasterizer()

	var sink pipeline.EventSink
	var events server.EventLister
	if cfg.DB.DSN != "" {
		db, err := store.Open(cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		sink = db
		events = db
	}

	var summaryCache cache.Cache
	if cfg.Cache.Enabled {
		summaryCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
	}

	proc := pipeline.NewProcessor(cfg, engine, rasterizer, sink, summaryCache)
	srv := server.New(cfg, proc, events)

	fmt.Fprintf(os.Stderr, "Listening on :%s\n", cfg.Server.Port)
	return srv.Run()
}

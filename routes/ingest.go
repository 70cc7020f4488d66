package routes

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"modular-rag-service/internal/config"
	"modular-rag-service/models"
	"modular-rag-service/services"
	"modular-rag-service/utils"

	"github.com/gin-gonic/gin"
)

// SetupIngestionRoutes registers the document upload endpoint.
func SetupIngestionRoutes(router *gin.Engine, cfg *config.Config, ingestion *services.IngestionService, extractor *services.PDFExtractor) {
	api := router.Group("/api/v1")
	api.POST("/ingest", handleIngest(cfg, ingestion, extractor))
}

func handleIngest(cfg *config.Config, ingestion *services.IngestionService, extractor *services.PDFExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "No file provided", nil)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType != models.ContentTypePDF && contentType != models.ContentTypeText {
			utils.RespondWithBadRequest(c, "Invalid file content", gin.H{"content_type": contentType})
			return
		}
		if header.Size > cfg.MaxFileSize {
			utils.RespondWithBadRequest(c, "File size exceeds maximum limit", nil)
			return
		}

		strategy := c.DefaultQuery("chunking_strategy", cfg.DefaultChunkStrategy)
		if strategy != models.StrategyFixed && strategy != models.StrategySentence {
			utils.RespondWithBadRequest(c, "chunking_strategy must be \"fixed\" or \"sentence\"", nil)
			return
		}

		chunkSize := cfg.DefaultChunkSize
		if raw := c.Query("chunk_size"); raw != "" {
			chunkSize, err = strconv.Atoi(raw)
			if err != nil || chunkSize <= 0 {
				utils.RespondWithBadRequest(c, "chunk_size must be a positive integer", nil)
				return
			}
		}

		content, err := io.ReadAll(io.LimitReader(file, cfg.MaxFileSize+1))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}

		var rawText string
		if contentType == models.ContentTypePDF {
			rawText, err = extractor.ExtractText(c.Request.Context(), content)
			if err != nil {
				utils.RespondWithBadRequest(c, "Invalid file content", gin.H{"error": err.Error()})
				return
			}
		} else {
			rawText = string(content)
		}
		if strings.TrimSpace(rawText) == "" {
			utils.RespondWithBadRequest(c, "Invalid file content", nil)
			return
		}

		results, err := ingestion.Ingest(c.Request.Context(), header.Filename, rawText, strategy, chunkSize)
		if err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		c.JSON(http.StatusOK, models.IngestResponse{
			Message:    "Document ingested successfully",
			FileName:   header.Filename,
			ChunkCount: len(results),
			Chunks:     results,
		})
	}
}

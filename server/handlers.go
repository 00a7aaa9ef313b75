package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ezoic/tsreg/codec"
	"github.com/ezoic/tsreg/core/table"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
	"github.com/ezoic/tsreg/storage"
)

const indexHTML = `<html>
    <body>
        <h1>API ML Funcionando!</h1>
        <p>Backend no ar. Envie um CSV para /upload/, /avaliar/ ou /prever/.</p>
        <p><a href="/health">Verificar saúde da API</a></p>
    </body>
</html>
`

// Index serves a small status page.
func (s *Server) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

// Health reports liveness.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "API está funcionando"})
}

// Upload trains on the uploaded CSV using the "campo" form field as target.
func (s *Server) Upload(c *gin.Context) {
	tbl, target, ok := s.readLabeled(c)
	if !ok {
		return
	}

	rep, err := s.svc.Train(c.Request.Context(), tbl, target)
	if err != nil {
		s.writeError(c, "train", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Modelo treinado com sucesso!",
		"grafico_url": rep.ChartURL,
		"folds":       rep.Folds,
		"mean_r2":     rep.MeanR2,
		"mean_rmse":   rep.MeanRMSE,
	})
}

// Evaluate scores the persisted model on the uploaded labeled CSV.
func (s *Server) Evaluate(c *gin.Context) {
	tbl, target, ok := s.readLabeled(c)
	if !ok {
		return
	}

	rep, err := s.svc.Evaluate(c.Request.Context(), tbl, target)
	if err != nil {
		s.writeError(c, "evaluate", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Avaliação realizada com sucesso!",
		"grafico_url":  rep.ChartURL,
		"rmse":         rep.RMSE,
		"r2":           rep.R2,
		"model_source": rep.ModelSource,
	})
}

// Predict applies the persisted model to the uploaded CSV.
func (s *Server) Predict(c *gin.Context) {
	tbl, ok := s.readFile(c)
	if !ok {
		return
	}

	rep, err := s.svc.Predict(c.Request.Context(), tbl)
	if err != nil {
		s.writeError(c, "predict", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Previsão concluída!",
		"grafico_url": rep.ChartURL,
	})
}

// PredictionsCSV downloads the last prediction input with a prediction column.
func (s *Server) PredictionsCSV(c *gin.Context) {
	tbl, err := s.svc.PredictionsTable(c.Request.Context())
	if err != nil {
		s.writeError(c, "predictions_csv", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="previsoes.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := codec.WriteCSV(c.Writer, tbl); err != nil {
		s.logger.Error("Writing predictions CSV failed", err,
			log.RequestIDKey, c.GetString(requestIDCtxKey))
	}
}

// Reset acknowledges a UI reset. No stored state is touched.
func (s *Server) Reset(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"mensagem": "Interface resetada. O gráfico foi ocultado no frontend.",
	})
}

// Blob serves a chart from the charts container.
func (s *Server) Blob(c *gin.Context) {
	container, key := c.Param("container"), c.Param("key")
	opts := s.svc.Options()
	if container != opts.Containers.Charts {
		c.JSON(http.StatusNotFound, gin.H{"error": "blob not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), opts.StorageTimeout)
	defer cancel()
	data, err := s.store.Get(ctx, container, key)
	if err != nil {
		s.writeError(c, "blob", err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, storage.ContentType(key), data)
}

// readLabeled reads the "file" upload and the "campo" target field.
// On failure it has already written the response.
func (s *Server) readLabeled(c *gin.Context) (*table.Table, string, bool) {
	target := c.PostForm("campo")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Campo 'campo' é obrigatório."})
		return nil, "", false
	}

	tbl, ok := s.readFile(c)
	if !ok {
		return nil, "", false
	}
	if tbl.Index(target) < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Campo '%s' não encontrado no CSV.", target),
		})
		return nil, "", false
	}
	return tbl, target, true
}

func (s *Server) readFile(c *gin.Context) (*table.Table, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Arquivo 'file' é obrigatório.", "details": err.Error()})
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		s.writeError(c, "upload", errors.Wrap(err, "open upload"))
		return nil, false
	}
	defer f.Close()

	tbl, err := codec.ParseCSV(f)
	if err != nil {
		s.writeError(c, "upload", err)
		return nil, false
	}
	return tbl, true
}

// writeError maps pipeline errors onto status codes.
func (s *Server) writeError(c *gin.Context, stage string, err error) {
	var (
		validationErr *errors.ValidationError
		decodeErr     *errors.DecodeError
		valueErr      *errors.ValueError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "erro_validacao",
			"mensagens": validationErr.Messages(),
		})
	case errors.Is(err, errors.ErrModelNotFound), errors.Is(err, errors.ErrBlobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &decodeErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV inválido", "details": decodeErr.Error()})
	case errors.As(err, &valueErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valueErr.Error()})
	default:
		s.logger.Error("Request failed", err,
			log.StageKey, stage,
			log.RequestIDKey, c.GetString(requestIDCtxKey),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

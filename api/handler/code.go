package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/newsgrab/coder"
	"github.com/use-agent/newsgrab/models"
	"github.com/use-agent/newsgrab/store"
)

// ModelFactory returns the coding model, honoring a per-request model
// override when non-empty.
type ModelFactory func(model string) coder.Model

// Code returns a handler for POST /api/v1/code. It codes every stored
// article, writes result.csv into the output directory and returns the rows.
func Code(newModel ModelFactory, defaultPrompt string, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CodeRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
		}

		prompt := req.Prompt
		if prompt == "" {
			prompt = defaultPrompt
		}

		runner := coder.NewRunner(newModel(req.LLMModel), prompt)
		rows, usage, err := runner.Run(c.Request.Context(), st)
		if err != nil {
			ce := models.AsCaptureError(err)
			c.JSON(mapErrorToStatus(ce), models.CodeResponse{Error: ce.ToDetail(), LLMUsage: usage})
			return
		}

		path, err := coder.WriteCSVFile(st.Root, rows)
		if err != nil {
			ce := models.NewCaptureError(models.ErrCodeStorage, "failed to write result file", err)
			c.JSON(mapErrorToStatus(ce), models.CodeResponse{Error: ce.ToDetail(), LLMUsage: usage})
			return
		}

		out := make([]map[string]string, len(rows))
		for i, row := range rows {
			out[i] = row.Map()
		}
		c.JSON(http.StatusOK, models.CodeResponse{
			Success:  true,
			Rows:     out,
			CSVPath:  path,
			LLMUsage: usage,
		})
	}
}

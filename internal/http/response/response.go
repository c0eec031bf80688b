package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/curriculum-backend/internal/platform/apierr"
)

// ErrorBody is the flat error shape every endpoint returns.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// ImportErrorBody adds the partial progress of a halted import.
type ImportErrorBody struct {
	ErrorBody
	ImportedSoFar int `json:"imported_so_far"`
	BatchNumber   int `json:"batch_number"`
}

func errorBody(code string, err error) ErrorBody {
	details := "unknown error"
	if err != nil {
		details = err.Error()
	}
	return ErrorBody{Error: code, Details: details}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, errorBody(code, err))
}

// RespondAPIError maps err through apierr and writes the matching status.
// err must be non-nil.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.FromCurriculum(err)
	RespondError(c, ae.Status, ae.Code, err)
}

func RespondImportError(c *gin.Context, err error, importedSoFar, batchNumber int) {
	ae := apierr.FromCurriculum(err)
	c.JSON(ae.Status, ImportErrorBody{
		ErrorBody:     errorBody(ae.Code, err),
		ImportedSoFar: importedSoFar,
		BatchNumber:   batchNumber,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

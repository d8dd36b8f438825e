package controllers

import (
	"net/http"

	"doc-garage/apperror"
	"doc-garage/authentication"
	"doc-garage/environment"
	"doc-garage/lookups"
	"doc-garage/models"

	"github.com/gin-gonic/gin"
)

// GetDocument returns the specified document
func GetDocument(c *gin.Context) {

	var apiError ErrorResponse

	// service is public, a userID is only used to enrich the analytics
	userID, _ := authentication.Authenticate(c.Request)

	var id = c.Param("id")

	data, err := environment.Env.DocumentModel.GetDocument(id)
	if err != nil {
		switch err {
		case models.ErrDocumentNotFound:
			c.Status(http.StatusNoContent)
		default:
			apiError.Code = SystemError
			apiError.Message = apiError.String(apiError.Code)
			c.JSON(http.StatusInternalServerError, apiError)
		}
		return
	}

	// count the view unless it was a page refresh
	if environment.Env.Requests.Continue(c.ClientIP(), id) {
		environment.Env.Tracker.SaveVisitor("document", id, userID)
	}

	c.JSON(http.StatusOK, data)
}

// IngestDocuments stores a batch of uploaded documents (admins only)
func IngestDocuments(c *gin.Context) {

	var (
		err      error
		data     []models.DocumentUpload
		apiError ErrorResponse
	)

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	// ingestion is restricted to administrators
	credentials, err := environment.Env.UserModel.GetCredentials(userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}
	if credentials.RoleCode != lookups.URadmin {
		status, apiError := HandleError(apperror.ErrDenied)
		c.JSON(status, apiError)
		return
	}

	// use "shouldBind" not all fields are required in this context
	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	inserted, err := environment.Env.DocumentModel.Ingest(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Ingested{Received: len(data), Inserted: inserted})
}

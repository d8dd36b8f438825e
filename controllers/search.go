package controllers

import (
	"net/http"

	"doc-garage/authentication"
	"doc-garage/environment"
	"doc-garage/models"

	"github.com/gin-gonic/gin"
)

// Search runs a ranked hybrid search
// POST is used because the request may carry a query embedding
func Search(c *gin.Context) {

	var apiError ErrorResponse

	// service is public, a userID is only used to enrich the analytics
	userID, _ := authentication.Authenticate(c.Request)

	// anonymous struct used to receive input (POST BODY)
	// pointers to tell "absent" from zero values
	data := struct {
		Query  string    `json:"query" binding:"required"`
		Vector []float32 `json:"vector"`
		Alpha  *float64  `json:"alpha"`
		TopK   *int      `json:"topK"`
	}{}

	// use 'shouldBind' so we can send customized messages
	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	params := models.SearchParams{
		Query:  data.Query,
		Vector: data.Vector,
		Alpha:  -1, // lets the model apply its default
		UserID: userID,
	}
	if data.Alpha != nil {
		params.Alpha = *data.Alpha
	}
	if data.TopK != nil {
		params.TopK = *data.TopK
	}

	results, err := environment.Env.SearchModel.Rank(&params)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// nothing found (not an error to the client)
	if len(results) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, results)
}

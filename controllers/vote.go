package controllers

import (
	"net/http"

	"doc-garage/apperror"
	"doc-garage/authentication"
	"doc-garage/environment"

	"github.com/gin-gonic/gin"
)

// CastVote registers a new vote or flips an existing one,
// the response carries the updated counters of the document
func CastVote(c *gin.Context) {

	var apiError ErrorResponse

	// for enhanced security, read user from token
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	// anonymous struct used to receive input (POST BODY)
	data := struct {
		Vote string `json:"vote" binding:"required"`
	}{}

	// use 'shouldBind' so we can send customized messages
	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	result, err := environment.Env.VoteModel.CastVote(c.Param("id"), userID, data.Vote)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUserVotes returns the latest votes of the current user
func GetUserVotes(c *gin.Context) {

	// always read userID from token
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	votes, err := environment.Env.VoteModel.GetUserVotes(userID)
	if err != nil {
		// nothing found (not an error to the client)
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		// technical errors
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, votes)
}

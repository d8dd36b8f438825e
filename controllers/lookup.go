package controllers

import (
	"fmt"
	"net/http"

	"doc-garage/database"

	"github.com/gin-gonic/gin"
)

// ListLookups sends the code/text catalog to the clients
func ListLookups(c *gin.Context) {
	lookups, err := database.GetLookups()
	if err != nil {
		fmt.Println(err)
		c.JSON(http.StatusNoContent, nil)
		return
	}

	c.JSON(http.StatusOK, lookups)
}

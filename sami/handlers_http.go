package sami

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Local control API. Read-only: it exposes the node's state to the UI
// process, it never accepts wire data.

func (node *Node) initHTTPServer() *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	router.GET("/status", node.handleGetStatus)
	router.GET("/requests", node.handleGetAllRequests)
	router.GET("/requests/:id", node.handleGetRequestByID)
	return &http.Server{
		Addr:         node.cfg.HTTPServerListenPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

func (node *Node) handleGetStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"address":             node.ownContact.Address,
		"private_key_loaded":  node.IsPrivateKeyLoaded(),
		"registered_networks": node.networks.Size(),
		"handle_queue_length": node.networks.HandleQueue.Len(),
		"send_queue_length":   node.networks.SendQueue.Len(),
		"uptime_seconds":      int(time.Since(node.startTime).Seconds()),
	})
}

func (node *Node) handleGetAllRequests(c *gin.Context) {
	all, err := node.rawRequests.GetAllRawRequests()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"message": "failed to read requests", "error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, all)
}

func (node *Node) handleGetRequestByID(c *gin.Context) {
	id := c.Param("id")
	dic, err := node.rawRequests.GetRawRequest(id)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"message": "failed to read request", "error": err.Error()})
		return
	}
	if dic == nil {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "request not found", "input_id": id})
		return
	}
	c.IndentedJSON(http.StatusOK, dic)
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"fenrir/internal/bus"
	"fenrir/internal/ledger"
)

type createUserRequest struct {
	ID string `json:"id" binding:"required"`
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.ledger.CreateUser(req.ID)
	if err != nil {
		status := http.StatusInternalServerError
		if err == ledger.ErrUserExists {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) getUser(c *gin.Context) {
	user, ok := s.ledger.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) getAllUsers(c *gin.Context) {
	c.JSON(http.StatusOK, s.ledger.All())
}

type placeOrderRequest struct {
	User     string `json:"user" binding:"required"`
	Symbol   string `json:"symbol" binding:"required"`
	Side     string `json:"side" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Price    *int64 `json:"price"`
	Quantity uint64 `json:"quantity" binding:"required"`
}

// placeOrder validates the request at the HTTP boundary, stamps it with a
// correlation id, and publishes it onto the bus. It never calls into
// internal/engine directly -- matching happens asynchronously downstream.
func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := uuid.NewString()
	wire := bus.WireOrder{
		RequestID: requestID,
		User:      req.User,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Type:      req.Type,
		Price:     req.Price,
		Quantity:  req.Quantity,
	}

	if _, err := wire.ToOrder(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.bus.PublishOrder(wire); err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("publish order failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "order bus unavailable"})
		return
	}

	s.metrics.OrdersReceived.WithLabelValues(req.Symbol).Inc()
	c.JSON(http.StatusAccepted, gin.H{"status": "submitted", "request_id": requestID})
}

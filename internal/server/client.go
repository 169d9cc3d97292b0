package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/facturio/facturio/internal/client/domain"
)

type createClientRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required"`
	Company *string `json:"company"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Notes   *string `json:"notes"`
}

type updateClientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Company *string `json:"company"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Notes   *string `json:"notes"`
}

func (s *Server) ListClients(c *gin.Context) {
	clients, err := s.clientSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (s *Server) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	client, err := s.clientSvc.Create(c.Request.Context(), domain.CreateClientRequest{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Address: req.Address,
		Phone:   req.Phone,
		Notes:   req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (s *Server) GetClientByID(c *gin.Context) {
	client, err := s.clientSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (s *Server) UpdateClient(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	client, err := s.clientSvc.Update(c.Request.Context(), c.Param("id"), domain.UpdateClientRequest{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Address: req.Address,
		Phone:   req.Phone,
		Notes:   req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (s *Server) DeleteClient(c *gin.Context) {
	if err := s.clientSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinica-dental-api/internal/services"
)

// accountRoutes exposes CRUD for one credential-only collection (admins or
// assistants).
type accountRoutes struct {
	h       *Handler
	svc     *services.AccountService
	subject string
}

func (a accountRoutes) list(c *gin.Context) {
	out, err := a.svc.List(c.Request.Context())
	if err != nil {
		a.h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (a accountRoutes) get(c *gin.Context) {
	id, ok := a.h.pathID(c, a.subject)
	if !ok {
		return
	}
	account, err := a.svc.Get(c.Request.Context(), id)
	if err != nil {
		a.h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (a accountRoutes) create(c *gin.Context) {
	var req services.AccountInput
	if !a.h.bind(c, &req) {
		return
	}
	account, err := a.svc.Create(c.Request.Context(), req)
	if err != nil {
		a.h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": a.subject + " created", a.subject: account})
}

func (a accountRoutes) update(c *gin.Context) {
	id, ok := a.h.pathID(c, a.subject)
	if !ok {
		return
	}
	var req services.UpdateAccountInput
	if !a.h.bind(c, &req) {
		return
	}
	account, err := a.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		a.h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": a.subject + " updated", a.subject: account})
}

func (a accountRoutes) delete(c *gin.Context) {
	id, ok := a.h.pathID(c, a.subject)
	if !ok {
		return
	}
	if err := a.svc.Delete(c.Request.Context(), id); err != nil {
		a.h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": a.subject + " deleted"})
}

func (a accountRoutes) register(g *gin.RouterGroup) {
	g.GET("", a.list)
	g.POST("", a.create)
	g.GET("/:id", a.get)
	g.PUT("/:id", a.update)
	g.DELETE("/:id", a.delete)
}

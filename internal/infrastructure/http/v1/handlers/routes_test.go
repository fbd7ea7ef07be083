package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func registeredRoutes(register func(*gin.RouterGroup), prefix string) map[string]bool {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	register(engine.Group(prefix))

	routes := make(map[string]bool, len(engine.Routes()))
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	return routes
}

func TestProductRoutes_RecordEntreeOnProduct(t *testing.T) {
	h := NewProductHandler(NewBaseHandler(), nil, nil, nil)
	routes := registeredRoutes(h.RegisterRoutes, "/products")

	assert.True(t, routes["POST /products/:id/entrees"], "entrées are recorded on the product route")
	assert.True(t, routes["GET /products/:id/entrees"])
	assert.True(t, routes["GET /products/:id/sorties"])
}

func TestStockRoutes_ViewsOnly(t *testing.T) {
	h := NewStockHandler(NewBaseHandler(), nil, nil)
	routes := registeredRoutes(h.RegisterRoutes, "/stock")

	assert.Equal(t, map[string]bool{
		"GET /stock/entrees": true,
		"GET /stock/sorties": true,
	}, routes)
}

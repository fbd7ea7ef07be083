package apperror

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNotFound_AppendsEntity(t *testing.T) {
	err := NewNotFound("Produit")

	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, "Produit introuvable", err.Message)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
	assert.Equal(t, "Produit", err.Details["entity"])
}

func TestNewNotFoundMsg_Verbatim(t *testing.T) {
	err := NewNotFoundMsg("Demande introuvable ou déjà traitée")

	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, "Demande introuvable ou déjà traitée", err.Message)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("productId invalide").
		WithDetail("ligne", 2).
		WithDetail("productId", "xyz")

	assert.Equal(t, 2, err.Details["ligne"])
	assert.Equal(t, "xyz", err.Details["productId"])
}

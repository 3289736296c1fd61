package save

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"entity-sync/internal/entity"
	"entity-sync/internal/transport"
)

func TestSaver_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		if gjson.GetBytes(body, "entities.0.CompanyName").String() == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"Message":"invalid","EntityErrors":[{"PropertyName":"CompanyName","ErrorMessage":"required"}]}`))

			return
		}

		_, _ = w.Write([]byte(`{"KeyMappings":[{"EntityTypeName":"Shop.Customer, Shop","TempValue":-1,"RealValue":8}],` +
			`"Entities":[{"$type":"Shop.Customer, Shop","CustomerID":8,"CompanyName":"Acme"}]}`))
	}))
	defer srv.Close()

	client, err := transport.New(srv.URL + "/breeze/Shop")
	require.NoError(t, err)

	cat := testCatalog(t)
	m := entity.NewManager(cat)
	saver := NewSaver(cat, m, client)

	c := addEntity(t, m, "Customer", nil)

	_, err = saver.SaveChanges(context.Background(), nil, Options{})

	var rej *ServerValidationRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "CompanyName", rej.EntityErrors[0].PropertyName)
	assert.Equal(t, int64(-1), c.Get("CustomerID"))

	require.NoError(t, c.Set("CompanyName", "Acme"))

	res, err := saver.SaveChanges(context.Background(), nil, Options{})
	require.NoError(t, err)
	require.Len(t, res.Entities, 1)
	assert.Same(t, c, res.Entities[0])
	assert.Equal(t, int64(8), c.Get("CustomerID"))
	assert.False(t, m.HasChanges())
}

package orderkit_test

import (
	"testing"

	"github.com/autom8ter/orderkit"
	"github.com/autom8ter/orderkit/errors"
	"github.com/autom8ter/orderkit/testutil"
	"github.com/stretchr/testify/assert"
)

func TestReturner(t *testing.T) {
	t.Run("parse return mode", func(t *testing.T) {
		for input, expected := range map[string]orderkit.ReturnMode{
			"":       orderkit.ReturnCount,
			"count":  orderkit.ReturnCount,
			"Before": orderkit.ReturnBefore,
			"AFTER":  orderkit.ReturnAfter,
		} {
			mode, err := orderkit.ParseReturnMode(input)
			assert.NoError(t, err)
			assert.Equal(t, expected, mode)
		}
		_, err := orderkit.ParseReturnMode("during")
		assert.Equal(t, errors.Validation, errors.Extract(err).Code)
	})
	t.Run("invalid mode", func(t *testing.T) {
		_, err := orderkit.NewReturner("during")
		assert.Error(t, err)
	})
	t.Run("count", func(t *testing.T) {
		r, err := orderkit.NewReturner(orderkit.ReturnCount)
		assert.NoError(t, err)
		for i := 0; i < 5; i++ {
			doc := testutil.NewUserDoc()
			assert.NoError(t, r.BeforeUpdate(doc))
			assert.NoError(t, r.AfterUpdate(doc))
		}
		assert.NoError(t, r.BeforeUpdate(testutil.NewUserDoc()))
		result := r.Result()
		assert.Equal(t, orderkit.ReturnCount, result.Mode)
		assert.Equal(t, 5, result.Count)
		assert.Empty(t, result.Documents)

		r.Reset()
		assert.Equal(t, 0, r.Result().Count)
		assert.NoError(t, r.AfterUpdate(nil))
		assert.Equal(t, 1, r.Result().Count)
	})
	t.Run("before keeps the pre-image", func(t *testing.T) {
		r, err := orderkit.NewReturner(orderkit.ReturnBefore)
		assert.NoError(t, err)
		doc := testutil.NewUserDoc()
		age := doc.Get("age")
		assert.NoError(t, r.BeforeUpdate(doc))
		assert.NoError(t, doc.Set("age", 1000))
		assert.NoError(t, doc.Set("status", "inactive"))
		assert.NoError(t, r.AfterUpdate(doc))

		result := r.Result()
		assert.Equal(t, orderkit.ReturnBefore, result.Mode)
		assert.Len(t, result.Documents, 1)
		assert.Equal(t, age, result.Documents[0].Get("age"))
		assert.Equal(t, "active", result.Documents[0].GetString("status"))
		assert.NotSame(t, doc, result.Documents[0])
		assert.EqualValues(t, 1000, doc.Get("age"))
	})
	t.Run("after keeps the post-image in call order", func(t *testing.T) {
		r, err := orderkit.NewReturner(orderkit.ReturnAfter)
		assert.NoError(t, err)
		docs := testutil.NewUserDocs(5)
		for _, doc := range docs {
			assert.NoError(t, r.BeforeUpdate(doc))
			assert.NoError(t, doc.Set("status", "inactive"))
			assert.NoError(t, r.AfterUpdate(doc))
		}
		result := r.Result()
		assert.Equal(t, orderkit.ReturnAfter, result.Mode)
		assert.Len(t, result.Documents, len(docs))
		for i, doc := range docs {
			assert.Same(t, doc, result.Documents[i])
			assert.Equal(t, "inactive", result.Documents[i].GetString("status"))
		}
	})
	t.Run("reset clears documents", func(t *testing.T) {
		r, err := orderkit.NewReturner(orderkit.ReturnAfter)
		assert.NoError(t, err)
		assert.NoError(t, r.AfterUpdate(testutil.NewUserDoc()))
		r.Reset()
		assert.Empty(t, r.Result().Documents)
	})
	t.Run("nil documents", func(t *testing.T) {
		before, _ := orderkit.NewReturner(orderkit.ReturnBefore)
		assert.Error(t, before.BeforeUpdate(nil))
		after, _ := orderkit.NewReturner(orderkit.ReturnAfter)
		assert.Error(t, after.AfterUpdate(nil))
	})
	t.Run("projection", func(t *testing.T) {
		r, err := orderkit.NewReturner(orderkit.ReturnBefore, orderkit.WithProjection(orderkit.SelectFields("_id", "contact.email")))
		assert.NoError(t, err)
		doc := testutil.NewUserDoc()
		assert.NoError(t, r.BeforeUpdate(doc))
		assert.NoError(t, doc.Set("contact.email", "changed@example.com"))
		result := r.Result()
		assert.Len(t, result.Documents, 1)
		projected := result.Documents[0]
		assert.Equal(t, doc.GetString("_id"), projected.GetString("_id"))
		assert.NotEqual(t, "changed@example.com", projected.GetString("contact.email"))
		assert.False(t, projected.Exists("name"))
	})
	t.Run("projection error", func(t *testing.T) {
		r, err := orderkit.NewReturner(orderkit.ReturnAfter, orderkit.WithProjection(orderkit.ProjectorFunc(func(doc *orderkit.Document) (*orderkit.Document, error) {
			return nil, errors.New(errors.Validation, "bad expression")
		})))
		assert.NoError(t, err)
		err = r.AfterUpdate(testutil.NewUserDoc())
		assert.Error(t, err)
		assert.Empty(t, r.Result().Documents)
	})
}

package testutil

import (
	"context"
	"time"

	"github.com/autom8ter/orderkit"
	"github.com/autom8ter/orderkit/kv"
	"github.com/autom8ter/orderkit/kv/badger"
	"github.com/brianvoe/gofakeit/v6"
)

var (
	// UserPrimaryIndex is the user collection's primary key index
	UserPrimaryIndex = orderkit.Index{
		Name:    "user_primary_idx",
		Fields:  []string{"_id"},
		Unique:  true,
		Primary: true,
		Ordered: true,
	}
	// UserNameAgeIndex is an ordered compound index on name, age
	UserNameAgeIndex = orderkit.Index{
		Name:    "user_name_age_idx",
		Fields:  []string{"name", "age"},
		Ordered: true,
	}
	// UserAgeIndex is an ordered index on age
	UserAgeIndex = orderkit.Index{
		Name:    "user_age_idx",
		Fields:  []string{"age"},
		Ordered: true,
	}
	// UserEmailIndex is a unique hash index on contact.email; it cannot be iterated in order
	UserEmailIndex = orderkit.Index{
		Name:   "user_email_idx",
		Fields: []string{"contact.email"},
		Unique: true,
	}
	// UserAccountIndex indexes users by account_id
	UserAccountIndex = orderkit.Index{
		Name:    "user_account_idx",
		Fields:  []string{"account_id"},
		Ordered: true,
	}
	// AccountNameIndex indexes accounts by name
	AccountNameIndex = orderkit.Index{
		Name:    "account_name_idx",
		Fields:  []string{"name"},
		Ordered: true,
	}
	// UserIndexes are the user collection's indexes in declaration order
	UserIndexes = []orderkit.IndexDescriptor{
		UserPrimaryIndex,
		UserEmailIndex,
		UserAgeIndex,
		UserNameAgeIndex,
		UserAccountIndex,
	}
)

// NewUserDoc creates a user document with fake data
func NewUserDoc() *orderkit.Document {
	doc, err := orderkit.NewDocumentFrom(map[string]interface{}{
		"_id":  gofakeit.UUID(),
		"name": gofakeit.Name(),
		"contact": map[string]interface{}{
			"email": gofakeit.Email(),
		},
		"account_id": gofakeit.IntRange(0, 100),
		"language":   gofakeit.Language(),
		"gender":     gofakeit.Gender(),
		"age":        gofakeit.IntRange(0, 100),
		"status":     "active",
		"timestamp":  gofakeit.DateRange(time.Now().Truncate(7200*time.Hour), time.Now()),
	})
	if err != nil {
		panic(err)
	}
	return doc
}

// NewUserDocs creates n user documents
func NewUserDocs(n int) orderkit.Documents {
	var docs orderkit.Documents
	for i := 0; i < n; i++ {
		docs = append(docs, NewUserDoc())
	}
	return docs
}

// TestKV runs fn against an in-memory badger database that is closed when fn returns
func TestKV(fn func(ctx context.Context, db kv.DB)) error {
	db, err := badger.New("")
	if err != nil {
		return err
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, db)
	return nil
}

package benchmarks

import (
	"context"

	"github.com/autom8ter/orderkit"
	"github.com/autom8ter/orderkit/kv"
	"github.com/autom8ter/orderkit/testutil"
)

func seedUsers(ctx context.Context, db kv.DB, n int) (*orderkit.KVSource, error) {
	source := orderkit.NewKVSource(db, "user", "_id")
	if err := source.Put(ctx, testutil.NewUserDocs(n)...); err != nil {
		return nil, err
	}
	return source, nil
}

package orderkit_test

import (
	"context"
	"testing"

	"github.com/autom8ter/orderkit"
	"github.com/autom8ter/orderkit/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCanSatisfyOrder(t *testing.T) {
	nameAge := orderkit.Index{Name: "name_age", Fields: []string{"name", "age"}, Ordered: true}
	ageName := orderkit.Index{Name: "age_name", Fields: []string{"age", "name"}, Ordered: true}

	t.Run("empty order by", func(t *testing.T) {
		assert.False(t, orderkit.CanSatisfyOrder(nameAge, nil))
		assert.False(t, orderkit.CanSatisfyOrder(nameAge, []orderkit.OrderBy{}))
	})
	t.Run("nil index", func(t *testing.T) {
		assert.False(t, orderkit.CanSatisfyOrder(nil, []orderkit.OrderBy{{Field: "name", Direction: orderkit.ASC}}))
	})
	t.Run("unordered index", func(t *testing.T) {
		assert.False(t, orderkit.CanSatisfyOrder(testutil.UserEmailIndex, []orderkit.OrderBy{
			{Field: "contact.email", Direction: orderkit.ASC},
		}))
	})
	t.Run("prefix of index fields", func(t *testing.T) {
		assert.True(t, orderkit.CanSatisfyOrder(nameAge, []orderkit.OrderBy{{Field: "name", Direction: orderkit.ASC}}))
	})
	t.Run("all index fields", func(t *testing.T) {
		assert.True(t, orderkit.CanSatisfyOrder(nameAge, []orderkit.OrderBy{
			{Field: "name", Direction: orderkit.DESC},
			{Field: "age", Direction: orderkit.DESC},
		}))
	})
	t.Run("mixed directions", func(t *testing.T) {
		assert.False(t, orderkit.CanSatisfyOrder(nameAge, []orderkit.OrderBy{
			{Field: "name", Direction: orderkit.ASC},
			{Field: "age", Direction: orderkit.DESC},
		}))
	})
	t.Run("directions compared to the first clause", func(t *testing.T) {
		idx := orderkit.Index{Name: "abc", Fields: []string{"a", "b", "c"}, Ordered: true}
		assert.False(t, orderkit.CanSatisfyOrder(idx, []orderkit.OrderBy{
			{Field: "a", Direction: orderkit.ASC},
			{Field: "b", Direction: orderkit.DESC},
			{Field: "c", Direction: orderkit.DESC},
		}))
	})
	t.Run("field mismatch at position 0", func(t *testing.T) {
		assert.False(t, orderkit.CanSatisfyOrder(ageName, []orderkit.OrderBy{{Field: "name", Direction: orderkit.ASC}}))
	})
	t.Run("case insensitive fields", func(t *testing.T) {
		assert.True(t, orderkit.CanSatisfyOrder(nameAge, []orderkit.OrderBy{
			{Field: "NAME", Direction: orderkit.ASC},
			{Field: "Age", Direction: orderkit.ASC},
		}))
	})
	t.Run("order by longer than index", func(t *testing.T) {
		assert.True(t, orderkit.CanSatisfyOrder(nameAge, []orderkit.OrderBy{
			{Field: "name", Direction: orderkit.ASC},
			{Field: "age", Direction: orderkit.ASC},
			{Field: "language", Direction: orderkit.ASC},
		}))
	})
	t.Run("mismatch beyond index fields is ignored", func(t *testing.T) {
		assert.True(t, orderkit.CanSatisfyOrder(nameAge, []orderkit.OrderBy{
			{Field: "name", Direction: orderkit.ASC},
			{Field: "age", Direction: orderkit.ASC},
			{Field: "language", Direction: orderkit.DESC},
		}))
	})
	t.Run("chained index", func(t *testing.T) {
		chained, err := orderkit.NewChainedIndex(testutil.UserAccountIndex, testutil.AccountNameIndex)
		assert.NoError(t, err)
		assert.False(t, orderkit.CanSatisfyOrder(chained, []orderkit.OrderBy{{Field: "name", Direction: orderkit.ASC}}))
	})
	t.Run("deterministic", func(t *testing.T) {
		order := []orderkit.OrderBy{{Field: "name", Direction: orderkit.ASC}}
		for i := 0; i < 10; i++ {
			assert.True(t, orderkit.CanSatisfyOrder(nameAge, order))
		}
	})
}

func TestOptimizer(t *testing.T) {
	e := orderkit.NewExecutor()
	explain := func(t *testing.T, order ...orderkit.OrderBy) orderkit.OrderPlan {
		cmdCtx := orderkit.NewCommandContext(nil)
		plan, err := e.ExplainOrder(cmdCtx.ToContext(context.Background()), orderkit.OrderStatement{
			Indexes: testutil.UserIndexes,
			OrderBy: order,
		})
		assert.NoError(t, err)
		return plan
	}
	t.Run("select primary index", func(t *testing.T) {
		plan := explain(t, orderkit.OrderBy{Field: "_id", Direction: orderkit.ASC})
		assert.True(t, plan.UsedIndex)
		assert.True(t, plan.FullySorted)
		assert.Equal(t, testutil.UserPrimaryIndex.Name, plan.IndexName)
		assert.False(t, plan.Reverse)
	})
	t.Run("select compound index", func(t *testing.T) {
		plan := explain(t,
			orderkit.OrderBy{Field: "name", Direction: orderkit.DESC},
			orderkit.OrderBy{Field: "age", Direction: orderkit.DESC},
		)
		assert.True(t, plan.UsedIndex)
		assert.True(t, plan.FullySorted)
		assert.Equal(t, testutil.UserNameAgeIndex.Name, plan.IndexName)
		assert.Equal(t, []string{"name", "age"}, plan.MatchedFields)
		assert.True(t, plan.Reverse)
	})
	t.Run("partially sorted", func(t *testing.T) {
		plan := explain(t,
			orderkit.OrderBy{Field: "age", Direction: orderkit.ASC},
			orderkit.OrderBy{Field: "name", Direction: orderkit.ASC},
		)
		assert.True(t, plan.UsedIndex)
		assert.False(t, plan.FullySorted)
		assert.Equal(t, testutil.UserAgeIndex.Name, plan.IndexName)
		assert.Equal(t, []string{"age"}, plan.MatchedFields)
	})
	t.Run("unordered index is never selected", func(t *testing.T) {
		plan := explain(t, orderkit.OrderBy{Field: "contact.email", Direction: orderkit.ASC})
		assert.False(t, plan.UsedIndex)
		assert.False(t, plan.FullySorted)
		assert.Nil(t, plan.Index)
		assert.Empty(t, plan.MatchedFields)
	})
	t.Run("mixed directions need a sort", func(t *testing.T) {
		plan := explain(t,
			orderkit.OrderBy{Field: "name", Direction: orderkit.ASC},
			orderkit.OrderBy{Field: "age", Direction: orderkit.DESC},
		)
		assert.False(t, plan.UsedIndex)
	})
	t.Run("ties keep the first declared index", func(t *testing.T) {
		first := orderkit.Index{Name: "first", Fields: []string{"age"}, Ordered: true}
		second := orderkit.Index{Name: "second", Fields: []string{"age", "name"}, Ordered: true}
		cmdCtx := orderkit.NewCommandContext(nil)
		plan, err := e.ExplainOrder(cmdCtx.ToContext(context.Background()), orderkit.OrderStatement{
			Indexes: []orderkit.IndexDescriptor{first, second},
			OrderBy: []orderkit.OrderBy{{Field: "age", Direction: orderkit.ASC}},
		})
		assert.NoError(t, err)
		assert.Equal(t, "first", plan.IndexName)
	})
	t.Run("indexes without fields are skipped", func(t *testing.T) {
		empty := orderkit.Index{Name: "empty", Ordered: true}
		cmdCtx := orderkit.NewCommandContext(nil)
		plan, err := e.ExplainOrder(cmdCtx.ToContext(context.Background()), orderkit.OrderStatement{
			Indexes: []orderkit.IndexDescriptor{empty},
			OrderBy: []orderkit.OrderBy{{Field: "age", Direction: orderkit.ASC}},
		})
		assert.NoError(t, err)
		assert.False(t, plan.UsedIndex)
	})
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/autom8ter/orderkit"
	"github.com/stretchr/testify/assert"
)

const planYAML = `
indexes:
  - name: user_name_age_idx
    fields: [name, age]
    ordered: true
  - name: user_email_idx
    fields: [contact.email]
    unique: true
statements:
  - orderBy:
      - field: name
        direction: asc
  - orderBy:
      - field: contact.email
        direction: desc
    lookup:
      - name: user_account_idx
        fields: [account_id]
        ordered: true
      - name: account_name_idx
        fields: [name]
        ordered: true
`

const fixtureYAML = `
collection: user
documents:
  - {_id: "1", name: alice, status: active}
  - {_id: "2", name: bob, status: active}
  - {_id: "3", name: carol, status: banned}
args:
  status: active
patch:
  status: inactive
select: [_id, status]
`

func writeFile(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestExplainCmd(t *testing.T) {
	out := bytes.NewBuffer(nil)
	cmd := explainCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"-f", writeFile(t, "plan.yaml", planYAML)})
	assert.NoError(t, cmd.Execute())

	var explains []orderkit.Explain
	assert.NoError(t, json.Unmarshal(out.Bytes(), &explains))
	assert.Len(t, explains, 2)
	assert.True(t, explains[0].IndexIsUsedInOrderBy)
	assert.True(t, explains[0].FullySortedByIndex)
	assert.Equal(t, []string{"user_name_age_idx"}, explains[0].InvolvedIndexes)
	assert.False(t, explains[1].IndexIsUsedInOrderBy)
	assert.Equal(t, []string{"account_name_idx", "user_account_idx"}, explains[1].InvolvedIndexes)
}

func TestUpdateCmd(t *testing.T) {
	fixture := writeFile(t, "fixture.yaml", fixtureYAML)
	t.Run("before", func(t *testing.T) {
		out := bytes.NewBuffer(nil)
		cmd := updateCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"-f", fixture, "-r", "before"})
		assert.NoError(t, cmd.Execute())
		var result orderkit.Result
		assert.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, orderkit.ReturnBefore, result.Mode)
		assert.Len(t, result.Documents, 2)
		assert.JSONEq(t, `{"_id":"1","status":"active"}`, result.Documents[0].String())
		assert.JSONEq(t, `{"_id":"2","status":"active"}`, result.Documents[1].String())
	})
	t.Run("config return mode", func(t *testing.T) {
		out := bytes.NewBuffer(nil)
		cmd := updateCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"-f", fixture, "-c", writeFile(t, "config.yaml", "returnMode: count\nlogLevel: error\n")})
		assert.NoError(t, cmd.Execute())
		var result orderkit.Result
		assert.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, orderkit.ReturnCount, result.Mode)
		assert.Equal(t, 2, result.Count)
	})
	t.Run("record order by metrics", func(t *testing.T) {
		ordered := writeFile(t, "ordered.yaml", fixtureYAML+`
indexes:
  - name: user_primary_idx
    fields: [_id]
    primary: true
    ordered: true
orderBy:
  - field: _id
    direction: asc
`)
		out := bytes.NewBuffer(nil)
		cmd := updateCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"-f", ordered, "-c", writeFile(t, "config.yaml", "recordMetrics: true\nlogLevel: error\n")})
		assert.NoError(t, cmd.Execute())
		var output updateOutput
		assert.NoError(t, json.Unmarshal(out.Bytes(), &output))
		assert.Equal(t, 2, output.Count)
		if assert.NotNil(t, output.Explain) {
			assert.True(t, output.Explain.IndexIsUsedInOrderBy)
			assert.True(t, output.Explain.FullySortedByIndex)
			assert.Equal(t, []string{"user_primary_idx"}, output.Explain.InvolvedIndexes)
			assert.Equal(t, "user_primary_idx", output.Explain.Plan.IndexName)
		}
	})
	t.Run("metrics off", func(t *testing.T) {
		out := bytes.NewBuffer(nil)
		cmd := updateCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"-f", fixture})
		assert.NoError(t, cmd.Execute())
		var output updateOutput
		assert.NoError(t, json.Unmarshal(out.Bytes(), &output))
		assert.Nil(t, output.Explain)
	})
	t.Run("missing fixture", func(t *testing.T) {
		cmd := updateCmd()
		cmd.SetOut(bytes.NewBuffer(nil))
		cmd.SetErr(bytes.NewBuffer(nil))
		cmd.SetArgs([]string{"-f", filepath.Join(t.TempDir(), "missing.yaml")})
		assert.Error(t, cmd.Execute())
	})
}

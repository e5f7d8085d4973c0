package service_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hfnukal/morotasks/internal/service"
)

func TestPendingID(t *testing.T) {
	a := service.PendingID()
	b := service.PendingID()

	assert.True(t, a.IsPending())
	assert.True(t, strings.HasPrefix(a.String(), service.TempPrefix))
	assert.NotEqual(t, a, b)
}

func TestConfirmedID(t *testing.T) {
	id := service.ConfirmedID("42")

	assert.False(t, id.IsPending())
	assert.Equal(t, "42", id.String())
	assert.Equal(t, id, service.ParseID("42"))
	assert.True(t, service.ID{}.IsZero())
}

func TestTaskJSON(t *testing.T) {
	data := []byte(`[{"id":"7","text":"a","completed":true},{"id":"tmp-x","text":"b","completed":false}]`)

	var tasks []service.Task
	require.NoError(t, json.Unmarshal(data, &tasks))
	require.Len(t, tasks, 2)

	assert.Equal(t, service.ConfirmedID("7"), tasks[0].ID)
	assert.True(t, tasks[0].Completed)
	assert.True(t, tasks[1].ID.IsPending())

	out, err := json.Marshal(tasks[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","text":"a","completed":true}`, string(out))
}

package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/planner/core"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST"})

	t.Run("prepare drops the principal", func(t *testing.T) {
		err := errors.New("boom")
		extras := map[string]interface{}{"sourceId": "a1"}
		args := logger.prepare("msg", []interface{}{err, core.Principal{ID: "1"}, extras, core.Principal{ID: "2"}})
		assert.Equal(t, []interface{}{"msg", err, extras}, args)
	})

	t.Run("error prints the message and args", func(t *testing.T) {
		buf.Reset()
		logger.Error("syncing calendar event", errors.New("store down"))
		assert.Contains(t, buf.String(), "ERROR syncing calendar event")
		assert.Contains(t, buf.String(), "store down")
	})
}

package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mailadmin/backend/internal/domain"
)

func TestCapabilitiesFromColumns(t *testing.T) {
	t.Run("status列优先于其他状态列", func(t *testing.T) {
		caps := capabilitiesFromColumns([]string{"id", "is_active", "disabled", "status", "name"})
		assert.Equal(t, domain.StatusColumnStatus, caps.StatusColumn)
	})

	t.Run("disabled列次之", func(t *testing.T) {
		caps := capabilitiesFromColumns([]string{"id", "is_active", "disabled"})
		assert.Equal(t, domain.StatusColumnDisabled, caps.StatusColumn)
	})

	t.Run("is_active兜底", func(t *testing.T) {
		caps := capabilitiesFromColumns([]string{"id", "is_active"})
		assert.Equal(t, domain.StatusColumnIsActive, caps.StatusColumn)
	})

	t.Run("没有状态列时为none", func(t *testing.T) {
		caps := capabilitiesFromColumns([]string{"id", "created_at"})
		assert.Equal(t, domain.StatusColumnNone, caps.StatusColumn)
	})

	t.Run("地址列按候选顺序命中", func(t *testing.T) {
		caps := capabilitiesFromColumns([]string{"rcpt_to", "email", "route"})
		assert.Equal(t, "route", caps.AddressColumn)

		caps = capabilitiesFromColumns([]string{"rcpt_to", "address"})
		assert.Equal(t, "address", caps.AddressColumn)

		caps = capabilitiesFromColumns([]string{"name", "route"})
		assert.Equal(t, "name", caps.AddressColumn)
	})

	t.Run("空列集合降级为none none", func(t *testing.T) {
		caps := capabilitiesFromColumns(nil)
		assert.Equal(t, domain.NoCapabilities(), caps)
	})
}

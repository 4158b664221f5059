package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailadmin/backend/internal/domain"
)

// countingProber 记录探测次数的假探测器
type countingProber struct {
	calls int
	caps  domain.SchemaCapabilities
	err   error
}

func (p *countingProber) DetectCapabilities(_ context.Context) (domain.SchemaCapabilities, error) {
	p.calls++
	return p.caps, p.err
}

func TestCacheGetOrCompute(t *testing.T) {
	t.Run("首次调用后结果被缓存", func(t *testing.T) {
		prober := &countingProber{
			caps: domain.SchemaCapabilities{
				StatusColumn:  domain.StatusColumnStatus,
				AddressColumn: "name",
			},
		}
		cache := NewCache(prober)

		first, err := cache.GetOrCompute(context.Background())
		require.NoError(t, err)
		second, err := cache.GetOrCompute(context.Background())
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, prober.calls)
	})

	t.Run("探测出错时不缓存", func(t *testing.T) {
		prober := &countingProber{err: context.Canceled}
		cache := NewCache(prober)

		caps, err := cache.GetOrCompute(context.Background())
		assert.Error(t, err)
		assert.Equal(t, domain.NoCapabilities(), caps)

		// 出错未写入缓存，下次还会重新探测
		prober.err = nil
		prober.caps = domain.SchemaCapabilities{
			StatusColumn:  domain.StatusColumnDisabled,
			AddressColumn: "route",
		}
		caps, err = cache.GetOrCompute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusColumnDisabled, caps.StatusColumn)
		assert.Equal(t, 2, prober.calls)
	})
}

func TestCacheRefresh(t *testing.T) {
	prober := &countingProber{
		caps: domain.SchemaCapabilities{
			StatusColumn:  domain.StatusColumnNone,
			AddressColumn: domain.AddressColumnNone,
		},
	}
	cache := NewCache(prober)

	_, err := cache.GetOrCompute(context.Background())
	require.NoError(t, err)

	// schema 演进后人工刷新必须覆盖旧缓存
	prober.caps = domain.SchemaCapabilities{
		StatusColumn:  domain.StatusColumnStatus,
		AddressColumn: "email",
	}
	refreshed, err := cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusColumnStatus, refreshed.StatusColumn)

	cached, err := cache.GetOrCompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, refreshed, cached)
	assert.Equal(t, 2, prober.calls)
}

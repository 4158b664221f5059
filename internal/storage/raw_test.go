package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/gozstd"
)

func TestValidPartitionName(t *testing.T) {
	t.Run("合法的日期分区名", func(t *testing.T) {
		assert.True(t, ValidPartitionName("raw-2026-08-30"))
		assert.True(t, ValidPartitionName("raw-1999-01-01"))
	})

	t.Run("非法分区名一律拒绝", func(t *testing.T) {
		cases := []string{
			"raw-2026-8-30",          // 月份未补零
			"raw-2026-08-30 ",        // 尾随空格
			"raw-2026-08-30; DROP",   // 注入尝试
			"RAW-2026-08-30",         // 大写前缀
			"raw-20260830",           // 缺少连字符
			"messages",               // 无关表名
			"raw-2026-08-30-extra",   // 多余后缀
			"xraw-2026-08-30",        // 前缀污染
			"",
		}
		for _, name := range cases {
			assert.False(t, ValidPartitionName(name), "应当拒绝: %q", name)
		}
	})
}

func TestFilterPartitions(t *testing.T) {
	names := []string{
		"raw-2026-08-29",
		"messages",
		"raw-2026-08-30",
		"raw-broken",
	}

	filtered := FilterPartitions(names)
	assert.Equal(t, []string{"raw-2026-08-29", "raw-2026-08-30"}, filtered)
}

func TestSortPartitionsNewestFirst(t *testing.T) {
	names := []string{
		"raw-2026-01-15",
		"raw-2026-08-30",
		"raw-2025-12-31",
	}

	SortPartitionsNewestFirst(names)
	assert.Equal(t, []string{"raw-2026-08-30", "raw-2026-01-15", "raw-2025-12-31"}, names)
}

func TestDecompressIfZstd(t *testing.T) {
	t.Run("压缩载荷被透明解压", func(t *testing.T) {
		original := []byte("From: a@example.com\r\n\r\nhello")
		compressed := gozstd.Compress(nil, original)

		assert.Equal(t, original, DecompressIfZstd(compressed))
	})

	t.Run("未压缩载荷原样返回", func(t *testing.T) {
		plain := []byte("plain mail body")
		assert.Equal(t, plain, DecompressIfZstd(plain))
	})

	t.Run("魔数匹配但解压失败时原样返回", func(t *testing.T) {
		bogus := []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00, 0x01}
		assert.Equal(t, bogus, DecompressIfZstd(bogus))
	})
}

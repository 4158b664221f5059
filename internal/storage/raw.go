package storage

import (
	"bytes"
	"regexp"
	"sort"

	"github.com/valyala/gozstd"
)

// partitionPattern 原始报文分区名的严格白名单。
// 任何进入查询的分区标识都必须整串匹配，防止标识符注入。
var partitionPattern = regexp.MustCompile(`^raw-\d{4}-\d{2}-\d{2}$`)

// ValidPartitionName 校验分区名是否符合 raw-YYYY-MM-DD。
func ValidPartitionName(name string) bool {
	return partitionPattern.MatchString(name)
}

// FilterPartitions 只保留通过白名单校验的分区名。
// 不合法的名字静默剔除，不报错。
func FilterPartitions(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if ValidPartitionName(name) {
			out = append(out, name)
		}
	}
	return out
}

// SortPartitionsNewestFirst 按日期降序排列分区名。
//
// 这是延迟启发：新邮件更可能被查询。扫描始终覆盖全部候选
// 分区，顺序只影响命中前的尝试次序，不影响能否找到。
func SortPartitionsNewestFirst(names []string) {
	// raw-YYYY-MM-DD 的字典序即日期序
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
}

// zstdMagic zstd 帧起始魔数。
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// DecompressIfZstd 透明解压 zstd 压缩的报文载荷。
//
// 部分部署会把原始报文压缩后归档；读取侧按魔数嗅探，解压失败
// 时原样返回字节，绝不报错。
func DecompressIfZstd(payload []byte) []byte {
	if !bytes.HasPrefix(payload, zstdMagic) {
		return payload
	}
	out, err := gozstd.Decompress(nil, payload)
	if err != nil {
		return payload
	}
	return out
}

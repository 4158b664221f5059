package domain

// StatusColumn 表示路由表上检测到的状态列。
type StatusColumn string

const (
	StatusColumnStatus   StatusColumn = "status"
	StatusColumnDisabled StatusColumn = "disabled"
	StatusColumnIsActive StatusColumn = "is_active"
	// StatusColumnNone 任何候选状态列都不存在
	StatusColumnNone StatusColumn = "none"
)

// AddressColumnNone 任何候选地址列都不存在。
const AddressColumnNone = "none"

// SchemaCapabilities 描述当前部署的引擎 schema 暴露了哪些可选列。
//
// 值只会取自固定的候选列名白名单，绝不来自任意外部字符串。
// 对固定 schema 而言计算是幂等的，可整个进程生命周期缓存。
type SchemaCapabilities struct {
	StatusColumn  StatusColumn `json:"statusColumn"`
	AddressColumn string       `json:"addressColumn"`
}

// NoCapabilities 返回最低能力描述符（元数据不可用时的降级值）。
func NoCapabilities() SchemaCapabilities {
	return SchemaCapabilities{
		StatusColumn:  StatusColumnNone,
		AddressColumn: AddressColumnNone,
	}
}

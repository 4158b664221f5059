package sql

import (
	"context"

	"go.uber.org/zap"

	"mailadmin/backend/internal/domain"
)

// routingTable 引擎路由/元数据表名，固定的 schema 事实。
const routingTable = "routes"

// 候选列按优先级排列，先命中者生效。
// SchemaCapabilities 的取值只会来自这两个白名单。
var (
	statusColumnCandidates = []domain.StatusColumn{
		domain.StatusColumnStatus,
		domain.StatusColumnDisabled,
		domain.StatusColumnIsActive,
	}
	addressColumnCandidates = []string{"name", "route", "address", "email", "rcpt_to"}
)

// DetectCapabilities 探测路由表暴露了哪些可选列。
//
// 只查元数据不查数据。元数据查询失败（表不存在、不支持自省）
// 视为能力缺失而非致命错误，降级为 none/none；只有上下文取消
// 作为错误传出。
func (s *Store) DetectCapabilities(ctx context.Context) (domain.SchemaCapabilities, error) {
	columns, err := s.tableColumns(ctx, routingTable)
	if err != nil {
		if ctx.Err() != nil {
			return domain.NoCapabilities(), ctx.Err()
		}
		s.log.Debug("schema introspection unavailable, degrading to no capabilities",
			zap.String("table", routingTable),
			zap.Error(err),
		)
		return domain.NoCapabilities(), nil
	}

	return capabilitiesFromColumns(columns), nil
}

// capabilitiesFromColumns 按候选优先级从实际列集合中选出能力值（纯函数）。
func capabilitiesFromColumns(columns []string) domain.SchemaCapabilities {
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}

	caps := domain.NoCapabilities()
	for _, candidate := range statusColumnCandidates {
		if present[string(candidate)] {
			caps.StatusColumn = candidate
			break
		}
	}
	for _, candidate := range addressColumnCandidates {
		if present[candidate] {
			caps.AddressColumn = candidate
			break
		}
	}
	return caps
}

// tableColumns 查询指定表的列名集合。
// 表名只作为查询参数传入，不拼接进 SQL 文本。
func (s *Store) tableColumns(ctx context.Context, table string) ([]string, error) {
	var query string
	if s.driverName == "postgres" {
		query = `SELECT column_name FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1`
	} else {
		query = `SELECT column_name FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?`
	}

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

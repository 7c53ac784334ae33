package repository

import "gorm.io/gorm"

// maxPageSize 单页上限
const maxPageSize = 200

// paginate 分页 scope；pageSize <= 0 表示不分页，供扫描类调用整批读取
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(query *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return query
		}
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
		if page < 1 {
			page = 1
		}
		return query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
}

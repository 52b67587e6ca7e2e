package dto

// 分页默认值；成绩单历史通常只有几条，上限取小
const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PaginationRequest ?page=&page_size=，越界值回落到默认值
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=50"`
}

func (p *PaginationRequest) GetPage() int {
	return max(p.Page, 1)
}

func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 || p.PageSize > maxPageSize {
		return defaultPageSize
	}
	return p.PageSize
}

// GetOffset 第 page 页的起始行
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

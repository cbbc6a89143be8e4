package catalog

import (
	"github.com/shopspring/decimal"
)

// Product 产品定义
// 部署期固定的静态配置，描述可购买项的价格、类型和支付效果
type Product struct {
	ID          int
	Name        string
	Type        string
	Price       decimal.Decimal
	Description string
	Duration    int // 会员/套餐时长（天）
	Points      int // 充值点数
}

// Catalog 产品目录
// 以只读服务的形式注入到订单创建和回调对账流程，方便测试时替换
type Catalog interface {
	// Lookup 按产品ID和类型查找产品定义，未找到返回 false
	Lookup(productID int, productType string) (*Product, bool)
	// Get 按产品ID查找产品定义（不限类型）
	Get(productID int) (*Product, bool)
	// List 返回全部产品
	List() []Product
}

// Static 静态产品目录
type Static struct {
	products []Product
}

// NewStatic 创建静态产品目录
func NewStatic(products []Product) *Static {
	return &Static{products: products}
}

// Default 内置产品目录
func Default() *Static {
	return NewStatic([]Product{
		{ID: 1, Name: "基础会员", Type: "member", Price: decimal.NewFromFloat(99.00), Description: "基础会员服务，有效期1个月", Duration: 30, Points: 1000},
		{ID: 2, Name: "高级会员", Type: "member", Price: decimal.NewFromFloat(199.00), Description: "高级会员服务，有效期3个月", Duration: 90, Points: 3000},
		{ID: 5, Name: "小额体验包", Type: "points", Price: decimal.NewFromFloat(5.00), Description: "10点数体验包", Points: 10},
		{ID: 6, Name: "15日套餐", Type: "subscription", Price: decimal.NewFromFloat(15.00), Description: "时长套餐：15天", Duration: 15},
		{ID: 7, Name: "月度套餐", Type: "subscription", Price: decimal.NewFromFloat(25.00), Description: "时长套餐：30天", Duration: 30},
		{ID: 8, Name: "季度套餐", Type: "subscription", Price: decimal.NewFromFloat(50.00), Description: "时长套餐：90天", Duration: 90},
		{ID: 9, Name: "半年套餐", Type: "subscription", Price: decimal.NewFromFloat(80.00), Description: "时长套餐：180天", Duration: 180},
		{ID: 10, Name: "年度套餐", Type: "subscription", Price: decimal.NewFromFloat(120.00), Description: "时长套餐：365天", Duration: 365},
	})
}

// Lookup 按产品ID和类型查找产品定义
func (s *Static) Lookup(productID int, productType string) (*Product, bool) {
	for i := range s.products {
		if s.products[i].ID == productID && s.products[i].Type == productType {
			p := s.products[i]
			return &p, true
		}
	}
	return nil, false
}

// Get 按产品ID查找产品定义
func (s *Static) Get(productID int) (*Product, bool) {
	for i := range s.products {
		if s.products[i].ID == productID {
			p := s.products[i]
			return &p, true
		}
	}
	return nil, false
}

// List 返回全部产品
func (s *Static) List() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

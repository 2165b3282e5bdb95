package domain

var Tables = []interface{}{
	// Accounts
	&CustomerUser{},
	&BackOfficeUser{},
	// Marketplace
	&Shop{},
	&ShopMember{},
	&Product{},
	&ProductSalesStats{},
	// Orders
	&Order{},
	// Notifications
	&NotifyTemplate{},
	&NotifyMessage{},
}

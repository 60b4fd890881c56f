package inventory

// Demo data used by the memory store, the migrate tool and the examples.
// デモ用の初期データ

// SeedItems returns the demo item set
func SeedItems() []Item {
	return []Item{
		{ID: 1, Name: "电阻 10KΩ 1/4W", Category: "电子元件", Quantity: 1500, Threshold: 500, Unit: "个", Location: "A-01-01", LastUpdated: "2024-01-15"},
		{ID: 2, Name: "电容 100μF 25V", Category: "电子元件", Quantity: 80, Threshold: 100, Unit: "个", Location: "A-01-02", LastUpdated: "2024-01-14"},
		{ID: 3, Name: "LED 灯珠 5mm 红", Category: "电子元件", Quantity: 3000, Threshold: 1000, Unit: "个", Location: "A-01-03", LastUpdated: "2024-01-15"},
		{ID: 4, Name: "USB-C 连接器", Category: "电子元件", Quantity: 25, Threshold: 50, Unit: "个", Location: "A-02-01", LastUpdated: "2024-01-13"},
		{ID: 5, Name: "A4 打印纸", Category: "办公用品", Quantity: 20, Threshold: 100, Unit: "包", Location: "B-01-01", LastUpdated: "2024-01-10"},
		{ID: 6, Name: "签字笔 黑色", Category: "办公用品", Quantity: 200, Threshold: 50, Unit: "支", Location: "B-01-02", LastUpdated: "2024-01-15"},
		{ID: 7, Name: "文件夹 A4", Category: "办公用品", Quantity: 150, Threshold: 30, Unit: "个", Location: "B-01-03", LastUpdated: "2024-01-12"},
		{ID: 8, Name: "瓦楞纸箱 40x30x20", Category: "包装材料", Quantity: 500, Threshold: 200, Unit: "个", Location: "C-01-01", LastUpdated: "2024-01-15"},
		{ID: 9, Name: "气泡膜", Category: "包装材料", Quantity: 0, Threshold: 50, Unit: "卷", Location: "C-01-02", LastUpdated: "2024-01-08"},
		{ID: 10, Name: "胶带 透明", Category: "包装材料", Quantity: 45, Threshold: 20, Unit: "卷", Location: "C-01-03", LastUpdated: "2024-01-14"},
		{ID: 11, Name: "PCB 电路板", Category: "电子元件", Quantity: 200, Threshold: 100, Unit: "块", Location: "A-03-01", LastUpdated: "2024-01-15"},
		{ID: 12, Name: "螺丝 M3x8mm", Category: "电子元件", Quantity: 5000, Threshold: 2000, Unit: "个", Location: "A-02-02", LastUpdated: "2024-01-15"},
		{ID: 13, Name: "标签贴纸", Category: "办公用品", Quantity: 15, Threshold: 50, Unit: "张", Location: "B-02-01", LastUpdated: "2024-01-11"},
		{ID: 14, Name: "塑料托盘", Category: "包装材料", Quantity: 80, Threshold: 30, Unit: "个", Location: "C-02-01", LastUpdated: "2024-01-15"},
		{ID: 15, Name: "电容 10μF 50V", Category: "电子元件", Quantity: 0, Threshold: 100, Unit: "个", Location: "A-01-04", LastUpdated: "2024-01-05"},
	}
}

// SeedTrend returns one week of demo trend samples
func SeedTrend() []TrendPoint {
	return []TrendPoint{
		{Date: "2024-01-09", Quantity: 8500},
		{Date: "2024-01-10", Quantity: 8200},
		{Date: "2024-01-11", Quantity: 8900},
		{Date: "2024-01-12", Quantity: 9100},
		{Date: "2024-01-13", Quantity: 8800},
		{Date: "2024-01-14", Quantity: 8600},
		{Date: "2024-01-15", Quantity: 9050},
	}
}

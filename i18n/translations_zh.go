package i18n

var chineseTranslations = map[string]string{
	// Deck generation
	"deck.llm_not_initialized": "LLM 服务未初始化，请检查模型设置",
	"deck.generation_failed":   "演示文稿生成失败：%s",
	"deck.generation_empty":    "模型未返回可用的幻灯片内容",
	"deck.parse_failed":        "生成的幻灯片无法解析：%s",
	"deck.edit_failed":         "幻灯片编辑失败：%s",
	"deck.edit_busy":           "该演示文稿的上一次编辑尚未完成，请稍后重试",
	"deck.invalid_range":       "引用的幻灯片在当前演示文稿中不存在",
	"deck.too_large":           "演示文稿超过最大 %d 页限制",
	"deck.empty":               "演示文稿没有幻灯片",
	"deck.session_not_found":   "未找到该会话的演示文稿",
	"deck.resume_failed":       "恢复演示文稿失败：%s",
	"deck.saved":               "演示文稿已保存",
	"deck.deleted":             "演示文稿已删除",

	// Validator
	"violation.duplicate_slide_id":         "两张幻灯片使用了相同的标识符",
	"violation.non_contiguous_index":       "幻灯片顺序已损坏",
	"violation.dangling_chart_placeholder": "存在没有初始化脚本的图表占位元素",
	"violation.orphan_chart_script":        "存在没有占位元素的图表脚本",
	"violation.deck_too_large":             "幻灯片数量过多",
	"violation.empty_deck":                 "没有剩余幻灯片",

	// Configuration
	"config.save_success":  "设置保存成功",
	"config.save_failed":   "保存设置失败：%s",
	"config.load_failed":   "加载设置失败：%s",
	"config.invalid_style": "未知的视觉样式",

	// Connection tests
	"connection.llm_success":        "模型服务连接成功",
	"connection.llm_failed":         "模型服务连接失败：%s",
	"connection.queryspace_success": "数据查询空间连接成功",
	"connection.queryspace_tables":  "数据查询空间连接成功，可见 %d 张表",
	"connection.queryspace_failed":  "数据查询空间连接失败：%s",
	"connection.unsupported_engine": "不支持的查询空间引擎：%s",
}

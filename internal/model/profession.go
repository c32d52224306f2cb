package model

// Professions maps the profession key used by the API to its display name.
// The display name is what gets interpolated into search queries and prompts.
var Professions = map[string]string{
	"product_manager":    "产品经理",
	"frontend_engineer":  "前端工程师",
	"backend_engineer":   "后端工程师",
	"fullstack_engineer": "全栈工程师",
	"ui_ux_designer":     "UI/UX 设计师",
	"graphic_designer":   "平面设计师",
	"operations":         "运营",
	"marketing":          "市场营销",
	"data_analyst":       "数据分析师",
	"online_teacher":     "线上老师",
	"content_creator":    "内容创作者",
	"student":            "学生",
	"entrepreneur":       "创业者",
	"other":              "其他",
}

// DefaultProfession is used when a request carries no recognizable profession.
const DefaultProfession = "职场人士"

// ProfessionDisplay resolves a profession key to its display name.
// Unknown keys fall back to the generic display so content generation
// still works for free-form professions.
func ProfessionDisplay(key string) string {
	if display, ok := Professions[key]; ok {
		return display
	}
	if key != "" {
		return key
	}
	return DefaultProfession
}

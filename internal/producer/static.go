package producer

import (
	"time"

	"focusai-rest-api/internal/model"
)

// FallbackItems returns the offline card set for a kind, profession-tagged
// where the copy allows it. Served when the live pipeline fails so the page
// never breaks on upstream flakiness.
func FallbackItems(kind model.Kind, profession string, limit int) []model.ContentItem {
	display := model.ProfessionDisplay(profession)
	today := time.Now().Format(model.DateFormat)

	var items []model.ContentItem
	switch kind {
	case model.KindTools:
		items = []model.ContentItem{
			{ID: "fallback-tool-1", Title: "ChatGPT", Summary: "通用对话助手，写作、分析、头脑风暴的万能起点。", URL: "https://chat.openai.com/", Source: "官方网站", Tags: []string{"#对话", "#写作"}},
			{ID: "fallback-tool-2", Title: "Claude", Summary: "长文档处理能力强，适合" + display + "分析资料与生成报告。", URL: "https://claude.ai/", Source: "官方网站", Tags: []string{"#长文本", "#分析"}},
			{ID: "fallback-tool-3", Title: "Midjourney", Summary: "高质量图像生成，海报、配图、视觉灵感一步到位。", URL: "https://midjourney.com/", Source: "官方网站", Tags: []string{"#绘画", "#设计"}},
			{ID: "fallback-tool-4", Title: "Notion AI", Summary: "笔记与文档中的 AI 助手，总结、改写、待办提取。", URL: "https://www.notion.so/product/ai", Source: "官方网站", Tags: []string{"#办公", "#笔记"}},
			{ID: "fallback-tool-5", Title: "Perplexity", Summary: "带引用的 AI 搜索，查资料时可直接核对来源。", URL: "https://www.perplexity.ai/", Source: "官方网站", Tags: []string{"#搜索", "#调研"}},
			{ID: "fallback-tool-6", Title: "DeepSeek", Summary: "开源大模型，中文能力强，API 成本低。", URL: "https://www.deepseek.com/", Source: "官方网站", Tags: []string{"#大模型", "#开源"}},
		}
	case model.KindCases:
		items = []model.ContentItem{
			{ID: "fallback-case-1", Title: "用 AI 整理会议纪要", Summary: "录音转写后交给大模型提炼决议与待办，半小时工作缩到五分钟。", Impact: display + "可以直接套用：转写、提炼、分发三步走。", URL: "https://claude.ai/", Source: "社区分享", Tags: []string{"#效率", "#会议"}},
			{ID: "fallback-case-2", Title: "AI 辅助竞品分析", Summary: "把竞品页面与评测喂给模型，生成结构化对比表。", Impact: "适合" + display + "快速建立市场认知。", URL: "https://chat.openai.com/", Source: "社区分享", Tags: []string{"#调研", "#分析"}},
			{ID: "fallback-case-3", Title: "批量生成营销文案", Summary: "用模板化 Prompt 批量产出不同渠道的文案初稿，人工只做终审。", Impact: display + "可据此搭建自己的文案流水线。", URL: "https://www.deepseek.com/", Source: "社区分享", Tags: []string{"#营销", "#文案"}},
		}
	default:
		items = []model.ContentItem{
			{ID: "fallback-news-1", Title: "大模型持续迭代，关注官方发布渠道", Summary: "主流大模型厂商保持高频更新节奏，能力边界每季度都在变化。", Impact: "建议" + display + "定期试用新版本，及时调整工作流。", Prompt: "请总结这款 AI 产品最近一次更新的要点，并说明对我的工作有什么影响。", URL: "https://openai.com/blog", Source: "官方博客", Tags: []string{"#大模型", "#动态"}},
			{ID: "fallback-news-2", Title: "AI Agent 走向实用化", Summary: "智能体框架逐渐成熟，多步骤任务的自动化门槛持续降低。", Impact: display + "可以开始把重复性流程交给 Agent 试运行。", Prompt: "帮我把以下重复性流程拆解成可以交给 AI Agent 的步骤：[描述你的流程]", URL: "https://www.anthropic.com/", Source: "官方博客", Tags: []string{"#Agent", "#自动化"}},
		}
	}

	for i := range items {
		items[i].Timestamp = today
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

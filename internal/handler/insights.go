package handler

import (
	"errors"
	"net/http"
	"strconv"

	"focusai-rest-api/internal/model"
	"focusai-rest-api/internal/producer"
	"focusai-rest-api/internal/repository"
	"focusai-rest-api/internal/service"
	"focusai-rest-api/pkg/apierror"
	"focusai-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// InsightHandler handles content fetch and insight listing requests.
type InsightHandler struct {
	insightService *service.InsightService
	insightRepo    repository.InsightRepository
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(insightService *service.InsightService, insightRepo repository.InsightRepository) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		insightRepo:    insightRepo,
	}
}

// fetchRequest pulls the common query parameters for content fetches.
func fetchRequest(r *http.Request, kind model.Kind) service.FetchRequest {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}
	profession := r.URL.Query().Get("profession")
	if profession == "" {
		profession = "other"
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force_refresh"))

	return service.FetchRequest{
		UserID:       userID,
		Kind:         kind,
		Profession:   profession,
		ForceRefresh: force,
	}
}

// GetTools handles GET /api/v1/insights/tools
func (h *InsightHandler) GetTools(w http.ResponseWriter, r *http.Request) {
	result := h.insightService.Fetch(r.Context(), fetchRequest(r, model.KindTools))
	response.Raw(w, http.StatusOK, result)
}

// GetCases handles GET /api/v1/insights/cases
func (h *InsightHandler) GetCases(w http.ResponseWriter, r *http.Request) {
	result := h.insightService.Fetch(r.Context(), fetchRequest(r, model.KindCases))
	response.Raw(w, http.StatusOK, result)
}

// GenerateNews handles GET /api/v1/insights/generate
func (h *InsightHandler) GenerateNews(w http.ResponseWriter, r *http.Request) {
	result := h.insightService.GenerateNews(r.Context(), fetchRequest(r, model.KindNews))
	response.Raw(w, http.StatusOK, result)
}

// List handles GET /api/v1/insights
func (h *InsightHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.insightRepo == nil {
		response.Error(w, apierror.ServiceUnavailable("insight store is not available"))
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(w, apierror.BadRequest("page must be a positive integer"))
			return
		}
		page = n
	}

	pageSize := 20
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			response.Error(w, apierror.BadRequest("page_size must be between 1 and 50"))
			return
		}
		pageSize = n
	}

	ctx := r.Context()
	items, err := h.insightRepo.GetInsights(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		response.Error(w, err)
		return
	}
	total, err := h.insightRepo.CountInsights(ctx)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, items, page, pageSize, total)
}

// GetDetail handles GET /api/v1/insights/{insight_id}
func (h *InsightHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	if h.insightRepo == nil {
		response.Error(w, apierror.ServiceUnavailable("insight store is not available"))
		return
	}

	insightID := chi.URLParam(r, "insight_id")
	if insightID == "" {
		response.Error(w, apierror.BadRequest("insight_id is required"))
		return
	}

	item, err := h.insightRepo.GetInsightByID(r.Context(), insightID)
	if err != nil {
		if errors.Is(err, repository.ErrInsightNotFound) {
			response.Error(w, apierror.NotFound("Insight not found"))
			return
		}
		response.Error(w, err)
		return
	}

	response.OK(w, item)
}

// Professions handles GET /api/v1/professions
func (h *InsightHandler) Professions(w http.ResponseWriter, r *http.Request) {
	type professionEntry struct {
		Key     string `json:"key"`
		Display string `json:"display"`
	}

	entries := make([]professionEntry, 0, len(model.Professions))
	for key, display := range model.Professions {
		entries = append(entries, professionEntry{Key: key, Display: display})
	}
	response.OK(w, entries)
}

// Mock handles GET /api/v1/insights/mock - demo cards, no upstream calls.
func (h *InsightHandler) Mock(w http.ResponseWriter, r *http.Request) {
	profession := r.URL.Query().Get("profession")
	display := model.ProfessionDisplay(profession)

	kind := model.KindNews
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k, err := model.ParseKind(raw)
		if err != nil {
			response.Error(w, apierror.BadRequest(err.Error()))
			return
		}
		kind = k
	}
	if kind != model.KindNews {
		response.Raw(w, http.StatusOK, producer.FallbackItems(kind, profession, 0))
		return
	}

	cards := []model.ContentItem{
		{
			ID:        "mock-1",
			Title:     "DeepSeek V3 发布：性能超越 GPT-4",
			Tags:      []string{"#DeepSeek", "#大模型", "#开源"},
			Summary:   "深度求索发布 DeepSeek V3，在多项基准测试中超越 GPT-4，且完全开源免费。模型支持 128K 上下文，推理速度提升 3 倍。",
			Impact:    "作为" + display + "，你可以用 DeepSeek V3 来辅助日常工作。它的长上下文能力特别适合处理长文档、生成详细报告。",
			Prompt:    "你是一个专业的助手。请帮我分析以下内容，并给出结构化的总结和可行的建议：\n\n[在此粘贴你的内容]",
			URL:       "https://www.deepseek.com/",
			Timestamp: "2024-12-03",
		},
		{
			ID:        "mock-2",
			Title:     "Midjourney V6.1 重大更新：文字渲染能力突破",
			Tags:      []string{"#Midjourney", "#AI绘画", "#设计"},
			Summary:   "Midjourney 发布 V6.1 版本，首次实现高质量文字渲染，可以直接在图片中生成清晰可读的文字，同时图像生成速度提升 2 倍。",
			Impact:    "对" + display + "来说，这意味着你可以快速生成带有文字的海报、封面、宣传图，不再需要后期 PS 加字。",
			Prompt:    "/imagine prompt: 教育主题插画，温馨明亮的教室场景 --v 6.1 --ar 16:9",
			URL:       "https://midjourney.com/",
			Timestamp: "2024-12-02",
		},
		{
			ID:        "mock-3",
			Title:     "Claude 3.5 Sonnet 新功能：Artifacts 实时预览",
			Tags:      []string{"#Claude", "#Anthropic", "#编程"},
			Summary:   "Anthropic 为 Claude 3.5 Sonnet 推出 Artifacts 功能，用户可以在对话中实时预览和运行代码、查看生成的文档和图表。",
			Impact:    "作为" + display + "，Artifacts 功能可以帮你快速验证想法，生成的结构化内容可以直接编辑和导出。",
			Prompt:    "请帮我设计一个为期 4 周的课程大纲，主题是 [你的课程主题]。使用 Markdown 格式输出。",
			URL:       "https://claude.ai/",
			Timestamp: "2024-12-01",
		},
	}

	response.Raw(w, http.StatusOK, cards)
}

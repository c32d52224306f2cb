package producer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"focusai-rest-api/internal/config"
	"focusai-rest-api/internal/model"
	"focusai-rest-api/pkg/uid"

	"github.com/codeGROOVE-dev/retry"
)

// Query templates per kind. The seed picks one (mod len), so a refresh
// sends a different query than the last restock did.
var toolQueries = []string{
	"%s AI工具推荐 提高效率 2025",
	"适合%s的AI工具 必备神器",
	"%s 如何用AI工具提升工作效率",
	"AI工具推荐 %s 实用",
	"%s AI办公工具 最新",
	"国内好用的AI工具 %s",
	"%s AI提效工具整理",
}

var caseQueries = []string{
	"%s AI应用案例 实战 2025",
	"%s 用AI解决工作问题 案例",
	"AI落地案例 %s 经验分享",
	"%s AI工作流 实践",
	"%s 借助AI提效 真实案例",
}

var newsQueries = []string{
	"AI人工智能 最新动态 2025",
	"AI大模型 最新发布 2025",
	"人工智能 行业新闻 最新",
	"AI工具 新功能 发布 2025",
	"ChatGPT Claude Gemini 最新消息",
	"AI Agent 智能体 最新进展",
}

// searchDomains limits results to sites the LLM rewrites well.
var searchDomains = []string{
	"zhihu.com", "36kr.com", "sspai.com", "juejin.cn",
	"mp.weixin.qq.com", "bilibili.com", "csdn.net",
	"jianshu.com", "woshipm.com", "jiqizhixin.com",
	"pingwest.com", "geekpark.net", "leiphone.com",
	"theverge.com", "techcrunch.com", "wired.com",
	"venturebeat.com", "openai.com", "anthropic.com",
	"huggingface.co",
}

// TavilyProducer implements BatchProducer over the Tavily search API plus
// an OpenAI-compatible chat-completions endpoint that rewrites raw search
// hits into insight cards.
type TavilyProducer struct {
	rotator *KeyRotator
	client  *http.Client

	searchBaseURL string
	llmBaseURL    string
	llmAPIKey     string
	llmModel      string
	timeout       time.Duration
}

// NewTavilyProducer wires a producer from config. The rotator is shared
// with the caller so credential usage stays visible in admin stats.
func NewTavilyProducer(cfg config.SearchConfig, rotator *KeyRotator) *TavilyProducer {
	return &TavilyProducer{
		rotator:       rotator,
		client:        &http.Client{Timeout: cfg.RequestTimeout},
		searchBaseURL: strings.TrimRight(cfg.TavilyBaseURL, "/"),
		llmBaseURL:    strings.TrimRight(cfg.LLMBaseURL, "/"),
		llmAPIKey:     cfg.LLMAPIKey,
		llmModel:      cfg.LLMModel,
		timeout:       cfg.RequestTimeout,
	}
}

// FetchBatch searches for kind-specific content and asks the LLM to rewrite
// the hits into count cards for the profession.
//
// The call deliberately detaches from the caller's cancellation: if the HTTP
// client disconnects mid-fetch, the batch still completes and warms the
// cache for the next request. Only the producer's own timeout bounds it.
func (p *TavilyProducer) FetchBatch(ctx context.Context, kind model.Kind, profession string, seed, count int) ([]model.ContentItem, error) {
	if !p.rotator.HasKeys() {
		return nil, &Error{Op: "search", Err: ErrNoCredentials}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	display := model.ProfessionDisplay(profession)
	query := queryFor(kind, display, seed)
	apiKey := p.rotator.Next()
	log.Printf("[TavilyProducer] %s fetch: query=%q seed=%d key=%s...", kind, query, seed, safePrefix(apiKey))

	results, err := p.search(ctx, apiKey, query, kind == model.KindNews)
	if err != nil {
		return nil, &Error{Op: "search", Err: err}
	}
	if len(results) == 0 {
		return nil, &Error{Op: "search", Err: ErrEmptyResults}
	}

	items, err := p.rewrite(ctx, kind, display, results, count)
	if err != nil {
		return nil, &Error{Op: "rewrite", Err: err}
	}

	today := time.Now().Format(model.DateFormat)
	for i := range items {
		items[i].ID = fmt.Sprintf("%s-%s", kind, uid.NewShort())
		items[i].Timestamp = today
	}
	return items, nil
}

func queryFor(kind model.Kind, professionDisplay string, seed int) string {
	switch kind {
	case model.KindTools:
		return fmt.Sprintf(toolQueries[abs(seed)%len(toolQueries)], professionDisplay)
	case model.KindCases:
		return fmt.Sprintf(caseQueries[abs(seed)%len(caseQueries)], professionDisplay)
	default:
		return newsQueries[abs(seed)%len(newsQueries)]
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// safePrefix truncates a credential for logging.
func safePrefix(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:8]
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// search calls Tavily with a few jittered retries; 4xx responses are not
// retried since they indicate a bad key or request, not flakiness.
func (p *TavilyProducer) search(ctx context.Context, apiKey, query string, recentOnly bool) ([]searchResult, error) {
	body := map[string]interface{}{
		"api_key":         apiKey,
		"query":           query,
		"search_depth":    "basic",
		"max_results":     20,
		"include_domains": searchDomains,
	}
	if recentOnly {
		body["days"] = 3
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.searchBaseURL+"/search", bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := p.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Unrecoverable(fmt.Errorf("search API rejected request: status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("search API returned status %d", resp.StatusCode)
			}

			data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			if err != nil {
				return err
			}
			return json.Unmarshal(data, &parsed)
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.MaxJitter(time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[TavilyProducer] search retry %d: %v", n, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return parsed.Results, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// rewrite feeds the search hits to the LLM and parses the returned card array.
func (p *TavilyProducer) rewrite(ctx context.Context, kind model.Kind, professionDisplay string, results []searchResult, count int) ([]model.ContentItem, error) {
	var sb strings.Builder
	for i, res := range results {
		fmt.Fprintf(&sb, "[%d] 标题: %s\n链接: %s\n摘要: %s\n\n", i+1, res.Title, res.URL, res.Content)
	}

	prompt := promptFor(kind, professionDisplay, sb.String(), count)

	reqBody, err := json.Marshal(chatRequest{
		Model:       p.llmModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
		MaxTokens:   4000,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.llmBaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.llmAPIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LLM API returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	var chat chatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		return nil, err
	}
	if len(chat.Choices) == 0 {
		return nil, ErrBadModelOutput
	}

	return ParseCardArray(chat.Choices[0].Message.Content)
}

// ParseCardArray extracts the JSON card array from raw model output,
// tolerating markdown fences and surrounding prose.
func ParseCardArray(content string) ([]model.ContentItem, error) {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "```json"); idx != -1 {
		content = content[idx+len("```json"):]
		if end := strings.Index(content, "```"); end != -1 {
			content = content[:end]
		}
	} else if idx := strings.Index(content, "```"); idx != -1 {
		content = content[idx+3:]
		if end := strings.Index(content, "```"); end != -1 {
			content = content[:end]
		}
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, ErrBadModelOutput
	}

	var items []model.ContentItem
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
	}
	return items, nil
}

func promptFor(kind model.Kind, professionDisplay, searchContext string, count int) string {
	switch kind {
	case model.KindTools:
		return fmt.Sprintf(`你是一位专业的 AI 工具分析师。我为你搜集了一些关于"%s"的 AI 工具搜索结果。
请仔细阅读以下搜索摘要，并从中提取整理出 %d 个最适合该职业的真实 AI 工具。

搜索结果数据：
%s

要求：
1. 必须基于上述搜索结果推荐，不要编造。
2. 重点关注能提升该职业工作效率的工具，并给出真实的官网链接。

请严格按照 JSON 格式返回：
[{"id":"tool-1","title":"工具名称","summary":"该工具对%s的具体价值（50字以内）","url":"工具官网链接","source_name":"来源","tags":["#标签1","#标签2"]}]

只返回 JSON 数组。`, professionDisplay, count, searchContext, professionDisplay)
	case model.KindCases:
		return fmt.Sprintf(`你是一位专业的 AI 应用顾问。我为你搜集了一些关于"%s"的 AI 实战案例搜索结果。
请仔细阅读以下搜索摘要，并整理出 %d 个对该职业最有参考价值的真实案例。

搜索结果数据：
%s

要求：
1. 必须基于上述搜索结果整理，不要编造。
2. 每个案例说明用了什么 AI 能力、解决了什么问题。

请严格按照 JSON 格式返回：
[{"id":"case-1","title":"案例标题","summary":"案例做法与效果（80字以内）","impact":"对%s的借鉴意义","url":"原文链接","source_name":"来源","tags":["#标签1","#标签2"]}]

只返回 JSON 数组。`, professionDisplay, count, searchContext, professionDisplay)
	default:
		return fmt.Sprintf(`你是一位专业的 AI 行业分析师。我为你搜集了一些最新的 AI 相关新闻。
请仔细阅读以下搜索结果，并为"%s"生成 %d 条高质量的 AI 行业洞察卡片。

搜索结果：
%s

要求：
1. 每条洞察都要基于真实的搜索结果，不要编造。
2. 摘要简洁有信息量（50-100字），影响分析要针对 %s 具体化。
3. Prompt 要实用，可以直接复制使用。

请严格按照以下 JSON 格式返回：
[{"id":"news-1","title":"新闻标题","tags":["#标签1","#标签2","#标签3"],"summary":"新闻摘要","impact":"对%s的具体影响和建议","prompt":"可直接使用的 Prompt 示例","url":"原文链接"}]

只返回 JSON 数组，不要其他内容。`, professionDisplay, count, searchContext, professionDisplay, professionDisplay)
	}
}

// Ensure TavilyProducer implements BatchProducer
var _ BatchProducer = (*TavilyProducer)(nil)

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"contentgate/server/internal/config"
	"contentgate/server/internal/intake"
	"contentgate/server/internal/logger"
	"contentgate/server/internal/model"
	"contentgate/server/internal/submission"
	"contentgate/server/internal/validator"
)

const (
	headerRequestID    = "X-Request-Id"
	headerSubmissionID = "X-Submission-Id"

	defaultListLimit = 50
)

type Server struct {
	config    *config.Config
	validator *validator.Validator
	intake    *intake.Intake
	log       *logger.Logger

	// WebSocket upgrader，用于实时预览
	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, v *validator.Validator, in *intake.Intake, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		config:    cfg,
		validator: v,
		intake:    in,
		log:       log,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// 非浏览器客户端不带 Origin
			return origin == "" || s.originAllowed(origin)
		},
	}
	return s
}

func (s *Server) Routes() http.Handler {
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		otelgin.Middleware(s.config.Tracing.ServiceName),
		s.requestIDMiddleware(),
		s.requestLogMiddleware(),
		s.corsMiddleware(),
	)
	engine.GET("/healthz", s.handleHealthz)

	api := engine.Group("/api")
	api.POST("/content/validate", s.handleValidateContent)
	api.POST("/content/batch", s.handleValidateBatch)
	api.GET("/content/stream", s.handleContentStream)
	api.POST("/branding/validate", s.handleValidateBranding)
	api.GET("/submissions", s.handleListSubmissions)
	api.GET("/submissions/:id", s.handleGetSubmission)
	api.GET("/stats", s.handleStats)
	return engine
}

// handleHealthz 返回服务健康状态与已注册的场景类型。
func (s *Server) handleHealthz(c *gin.Context) {
	types := make([]string, 0)
	for _, t := range s.validator.SceneTypes() {
		types = append(types, string(t))
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sceneTypes": types})
}

// handleValidateContent 校验一份内容并写入审计记录。
// 内容无效同样返回 200，结论在报告的 isValid 中。
func (s *Server) handleValidateContent(c *gin.Context) {
	raw, ok := s.readBody(c)
	if !ok {
		return
	}

	rec, err := s.intake.Submit(c.Request.Context(), raw, "api")
	if err != nil {
		s.log.Error("[API] submit failed", "error", err, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit failed"})
		return
	}

	c.Header(headerSubmissionID, rec.ID)
	c.JSON(http.StatusOK, rec.Report)
}

type batchRequest struct {
	Documents []json.RawMessage `json:"documents"`
}

type batchResponse struct {
	Reports []model.ValidationReport `json:"reports"`
}

// handleValidateBatch 并行校验多份内容，报告顺序与请求一致。批量接口不写审计记录。
func (s *Server) handleValidateBatch(c *gin.Context) {
	raw, ok := s.readBody(c)
	if !ok {
		return
	}

	var req batchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.Documents) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "documents required"})
		return
	}
	if limit := s.config.Intake.MaxBatchDocuments; limit > 0 && len(req.Documents) > limit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many documents, max " + strconv.Itoa(limit)})
		return
	}

	docs := make([][]byte, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = d
	}
	reports, err := s.validator.ValidateBatch(c.Request.Context(), docs, s.config.Validation.BatchConcurrency)
	if err != nil {
		s.log.Warn("[API] batch aborted", "error", err, "documents", len(docs))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "batch aborted"})
		return
	}
	c.JSON(http.StatusOK, batchResponse{Reports: reports})
}

// handleValidateBranding 校验市政品牌配置。空请求体等同于未提供品牌。
func (s *Server) handleValidateBranding(c *gin.Context) {
	raw, ok := s.readBody(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.validator.ValidateBrandingJSON(raw))
}

// handleListSubmissions 列出最近的提交，支持 limit、invalid、documentId 过滤。
func (s *Server) handleListSubmissions(c *gin.Context) {
	opts := submission.ListOptions{
		Limit:       defaultListLimit,
		InvalidOnly: c.Query("invalid") == "true",
		DocumentID:  c.Query("documentId"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		opts.Limit = n
	}

	records, err := s.intake.List(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list submissions failed"})
		return
	}
	out := make([]model.SubmissionSummary, 0, len(records))
	for i := range records {
		out = append(out, records[i].Summary())
	}
	c.JSON(http.StatusOK, gin.H{"submissions": out})
}

// handleGetSubmission 返回一条完整的审计记录。
func (s *Server) handleGetSubmission(c *gin.Context) {
	rec, err := s.intake.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if intake.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load submission failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.intake.Stats())
}

// readBody 读取请求体并施加体积上限，失败时已写好响应。
func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body := io.Reader(c.Request.Body)
	if limit := s.config.Intake.MaxBodyBytes; limit > 0 {
		body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return nil, false
	}
	return raw, true
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.config.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// streamIdleTimeout 返回实时预览的空闲超时。
func (s *Server) streamIdleTimeout() time.Duration {
	if d := s.config.Server.StreamIdleTimeout; d > 0 {
		return d
	}
	return 2 * time.Minute
}

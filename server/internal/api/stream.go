package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"contentgate/server/internal/model"
	"contentgate/server/internal/validator"
)

// handleContentStream 实时预览：客户端每发一帧文档，服务端回一份报告。
// 预览不写审计记录；连接空闲超过 StreamIdleTimeout 后关闭。
func (s *Server) handleContentStream(c *gin.Context) {
	reqID := c.GetString("request_id")
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("[API] websocket upgrade failed", "error", err, "request_id", reqID)
		return
	}
	defer conn.Close()

	if limit := s.config.Intake.MaxBodyBytes; limit > 0 {
		conn.SetReadLimit(limit)
	}
	idle := s.streamIdleTimeout()
	ctx := c.Request.Context()
	s.log.Info("[API] preview stream opened", "request_id", reqID, "remote", c.Request.RemoteAddr)

	frames := 0
	for {
		_ = conn.SetReadDeadline(time.Now().Add(idle))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("[API] preview stream read failed", "error", err, "request_id", reqID)
			}
			break
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}

		var report model.ValidationReport
		if doc, err := validator.DecodeDocument(data); err != nil {
			report = model.FaultReport(err)
		} else {
			report = s.validator.ValidateContentContext(ctx, doc)
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(report); err != nil {
			s.log.Warn("[API] preview stream write failed", "error", err, "request_id", reqID)
			break
		}
		frames++
	}
	s.log.Info("[API] preview stream closed", "request_id", reqID, "frames", frames)
}

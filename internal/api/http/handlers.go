package http

import (
	"net/http"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/gateway"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Numbers in args stay json.Number so amounts reach the module unchanged.
var requestAPI = sonic.Config{UseNumber: true}.Froze()

// Handlers exposes the gateway over HTTP.
type Handlers struct {
	guard  *gateway.Guard
	logger *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(guard *gateway.Guard, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{guard: guard, logger: logger.Named("http")}
}

// LoadRequest is the body of POST /modules/load.
type LoadRequest struct {
	ProtocolType string `json:"protocolType"`
	Module       string `json:"module"`
}

// CallRequest is the body of POST /modules/call.
type CallRequest struct {
	Target             string `json:"target" binding:"required"`
	Method             string `json:"method" binding:"required"`
	Args               []any  `json:"args"`
	ProtocolIdentifier string `json:"protocolIdentifier"`
	ModuleIdentifier   string `json:"moduleIdentifier"`
	NetworkID          string `json:"networkId"`
}

// Register mounts the module routes on router.
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/health", h.Health)
	router.POST("/modules/load", h.LoadModules)
	router.POST("/modules/call", h.CallMethod)
}

// Health reports the gateway state and the modules with a live context.
func (h *Handlers) Health(c *gin.Context) {
	state := h.guard.State()
	body := gin.H{
		"status":  state.String(),
		"modules": modules.Modules(),
	}

	gw, err := h.guard.Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["live"] = gw.Registry().Live()
	c.JSON(http.StatusOK, body)
}

// LoadModules handles POST /modules/load.
func (h *Handlers) LoadModules(c *gin.Context) {
	var req LoadRequest
	if !h.bind(c, &req) {
		return
	}

	protocolType, err := modules.ParseProtocolType(req.ProtocolType)
	if err != nil {
		h.fail(c, err)
		return
	}

	value, err := h.guard.LoadModules(c.Request.Context(), protocolType, modules.ModuleName(req.Module))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{modules.ResultFieldLoadModules: value})
}

// CallMethod handles POST /modules/call.
func (h *Handlers) CallMethod(c *gin.Context) {
	var req CallRequest
	if !h.bind(c, &req) {
		return
	}

	action, err := modules.NewCallAction(modules.CallRequest{
		Target:             req.Target,
		Method:             req.Method,
		Args:               req.Args,
		ProtocolIdentifier: req.ProtocolIdentifier,
		ModuleIdentifier:   req.ModuleIdentifier,
		NetworkID:          req.NetworkID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	value, err := h.guard.Evaluate(c.Request.Context(), action)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{modules.ResultFieldCallMethod: value})
}

// bind decodes the JSON body into req and validates its binding tags. An
// empty body leaves req zero-valued.
func (h *Handlers) bind(c *gin.Context, req any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if len(raw) > 0 {
		if err := requestAPI.Unmarshal(raw, req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return false
		}
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.JSON(status, gin.H{modules.ErrorField: ErrorMessage(err)})
}

package srvreg

import (
	"fmt"
	"log"
	"strings"

	"scorequorum/repository"
)

// Request represents an incoming HTTP request
type Request struct {
	Method    string
	Path      string
	Body      string
	IP        string
	UserAgent string
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// HandlerFunc is a function that handles a request
type HandlerFunc func(*Request) (*Response, error)

// ServiceRegistry manages all service handlers
type ServiceRegistry struct {
	handlers   map[string]map[string]HandlerFunc
	repository *repository.Repository
	nodeName   string
}

var defaultHeaders = map[string]string{
	"Content-Type": "application/json",
}

// NewServiceRegistry creates a new service registry
func NewServiceRegistry(repo *repository.Repository, nodeName string) *ServiceRegistry {
	return &ServiceRegistry{
		handlers:   make(map[string]map[string]HandlerFunc),
		repository: repo,
		nodeName:   nodeName,
	}
}

// RegisterHandler registers a handler for a specific method and path
func (sr *ServiceRegistry) RegisterHandler(method, path string, handler HandlerFunc) {
	if sr.handlers[method] == nil {
		sr.handlers[method] = make(map[string]HandlerFunc)
	}
	sr.handlers[method][path] = handler
	log.Printf("✓ Registered handler: %s %s", method, path)
}

// GetHandlerForPath finds the handler for a given method and path
func (sr *ServiceRegistry) GetHandlerForPath(method, path string) (HandlerFunc, bool) {
	methodHandlers, exists := sr.handlers[method]
	if !exists {
		return nil, false
	}

	// Try exact match first
	if handler, exists := methodHandlers[path]; exists {
		return handler, true
	}

	// Try pattern matching for paths with parameters
	for pattern, handler := range methodHandlers {
		if matchPath(pattern, path) {
			return handler, true
		}
	}

	return nil, false
}

// matchPath checks if a path matches a pattern with parameters
// It supports patterns like "/match/:id/balls" matching "/match/MCH-001/balls"
func matchPath(pattern, path string) bool {
	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")

	if len(patternParts) != len(pathParts) {
		return false
	}

	for i := 0; i < len(patternParts); i++ {
		if strings.HasPrefix(patternParts[i], ":") {
			// This is a parameter, it matches anything
			continue
		}
		if patternParts[i] != pathParts[i] {
			return false
		}
	}

	return true
}

// RegisterDefaultServices sets up all default endpoints
func (sr *ServiceRegistry) RegisterDefaultServices() {
	log.Println("Registering scoring services...")

	sr.RegisterHandler("POST", "/match/:id/scorers", sr.AssignScorersHandler)
	sr.RegisterHandler("POST", "/match/:id/balls", sr.SubmitBallHandler)
	sr.RegisterHandler("POST", "/match/:id/resolve", sr.ResolveDisputeHandler)
	sr.RegisterHandler("GET", "/match/:id/scoring", sr.ScoringStatusHandler)

	sr.RegisterHandler("GET", "/info", sr.InfoHandler)

	log.Println("✓ All services registered")
}

// GenerateResponse executes the request and generates a response
func (req *Request) GenerateResponse(services *ServiceRegistry) (*Response, error) {
	handler, found := services.GetHandlerForPath(req.Method, req.Path)

	if !found {
		return &Response{
			StatusCode: 404,
			Headers:    defaultHeaders,
			Body:       fmt.Sprintf(`{"error":"Service not found for %s %s"}`, req.Method, req.Path),
		}, nil
	}

	response, err := handler(req)
	return response, err
}

package webhookx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/maachbazar/whatsapp-agent/asyncx"
	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx/eventxsqs"
	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/msgx/providers/msgxwhatsapp"
)

// HandleAPIGateway serves an API Gateway HTTP API or Function URL request
func (c *Controller) HandleAPIGateway(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(req.RequestContext.HTTP.Method)
	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		path = "/"
	}

	var res Result
	switch {
	case path == "/" && method == http.MethodGet:
		body, err := json.Marshal(c.Health())
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		res = Result{Status: http.StatusOK, Body: body, ContentType: contentTypeJSON}
	case isWebhookPath(path):
		res = c.serveWebhook(ctx, method, req)
	default:
		res = textResult(http.StatusNotFound, http.StatusText(http.StatusNotFound))
	}
	return toAPIGatewayResponse(res), nil
}

func isWebhookPath(path string) bool {
	for _, p := range WebhookPaths {
		if p == path {
			return true
		}
	}
	return false
}

func (c *Controller) serveWebhook(ctx context.Context, method string, req events.APIGatewayV2HTTPRequest) Result {
	switch method {
	case http.MethodGet:
		q := req.QueryStringParameters
		return c.Verify(q["hub.mode"], q["hub.verify_token"], q["hub.challenge"])
	case http.MethodPost:
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				logx.Error("Undecodable base64 body: %v", err)
				return textResult(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
			}
			body = decoded
		}
		return c.Receive(ctx, header(req.Headers, msgxwhatsapp.SignatureHeader), body)
	case http.MethodOptions:
		return c.Options()
	default:
		return c.MethodNotAllowed(method)
	}
}

// header looks name up case-insensitively; API Gateway lower-cases names
func header(headers map[string]string, name string) string {
	if v, ok := headers[strings.ToLower(name)]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func toAPIGatewayResponse(res Result) events.APIGatewayV2HTTPResponse {
	headers := make(map[string]string, len(CORSHeaders)+1)
	for k, v := range CORSHeaders {
		headers[k] = v
	}
	if res.ContentType != "" {
		headers["Content-Type"] = res.ContentType
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: res.Status,
		Headers:    headers,
		Body:       string(res.Body),
	}
}

// SQSHandler handles an SQS-triggered batch, up to concurrency records at a
// time. Records that cannot be decoded are reported as batch item failures so
// the redrive policy can park them.
func SQSHandler(bus *eventxsqs.Bus, concurrency int) func(context.Context, events.SQSEvent) (events.SQSEventResponse, error) {
	return func(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
		results := asyncx.Map(ctx, ev.Records, concurrency, func(ctx context.Context, record events.SQSMessage) (struct{}, error) {
			return struct{}{}, bus.Handle(ctx, record.Body)
		})

		var resp events.SQSEventResponse
		for _, i := range asyncx.Errors(results) {
			record := ev.Records[i]
			logx.Error("Record %s failed: %s", record.MessageId, errx.Print(results[i].Err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: record.MessageId,
			})
		}
		return resp, nil
	}
}

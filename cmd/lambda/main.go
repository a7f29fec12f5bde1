package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"

	"boardroom-backend/internal/config"
	"boardroom-backend/internal/di"
)

var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	container *di.Container
)

// init runs during cold start
func init() {
	coldStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.LoadWithLoader()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Config files are not watched in Lambda.
	container, err = di.New(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	chiLambda = chiadapter.NewV2(container.Router)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("store", cfg.Store.Driver),
	)
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	container.Logger.Debug("Lambda received request",
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("request_id", req.RequestContext.RequestID),
	)
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}

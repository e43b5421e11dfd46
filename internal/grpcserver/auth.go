package grpcserver

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	authorizationHeader = "authorization"
	bearerPrefix        = "bearer "
	healthServicePrefix = "/grpc.health.v1.Health/"
)

type actorContextKey struct{}

// Authenticator validates tauth session tokens presented as bearer credentials.
type Authenticator struct {
	signingKey []byte
	issuer     string
	operators  map[string]struct{}
}

// NewAuthenticator builds an Authenticator. Operator ids receive operator rights.
func NewAuthenticator(signingKey []byte, issuer string, operatorIDs []string) (*Authenticator, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("signing key is required")
	}
	operators := make(map[string]struct{}, len(operatorIDs))
	for _, operatorID := range operatorIDs {
		operators[operatorID] = struct{}{}
	}
	return &Authenticator{signingKey: signingKey, issuer: issuer, operators: operators}, nil
}

// Authenticate resolves the actor carried by a signed session token.
func (authenticator *Authenticator) Authenticate(rawToken string) (settlement.Actor, error) {
	claims := &sessionvalidator.Claims{}
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if authenticator.issuer != "" {
		options = append(options, jwt.WithIssuer(authenticator.issuer))
	}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(*jwt.Token) (any, error) {
		return authenticator.signingKey, nil
	}, options...)
	if err != nil {
		return settlement.Actor{}, err
	}
	_, operator := authenticator.operators[claims.UserID]
	return settlement.NewActor(claims.UserID, operator)
}

// UnaryInterceptor rejects calls without a valid bearer token. Health checks pass through.
func (authenticator *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, request any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
			return handler(ctx, request)
		}
		rawToken, ok := bearerToken(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, errorUnauthenticated)
		}
		actor, err := authenticator.Authenticate(rawToken)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, errorUnauthenticated)
		}
		return handler(context.WithValue(ctx, actorContextKey{}, actor), request)
	}
}

func bearerToken(ctx context.Context) (string, bool) {
	incoming, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	for _, value := range incoming.Get(authorizationHeader) {
		if len(value) > len(bearerPrefix) && strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(value[len(bearerPrefix):]), true
		}
	}
	return "", false
}

func actorFromContext(ctx context.Context) (settlement.Actor, error) {
	actor, ok := ctx.Value(actorContextKey{}).(settlement.Actor)
	if !ok {
		return settlement.Actor{}, status.Error(codes.Unauthenticated, errorUnauthenticated)
	}
	return actor, nil
}

// WithBearerToken attaches a session token to outgoing calls made with ctx.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, authorizationHeader, "Bearer "+token)
}

// Package services implements the druglike gRPC services.  Requests and
// responses are google.protobuf.Struct values shaped like the JSON API, so
// the service is registered from a hand-written ServiceDesc.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/errors"
	dto "github.com/turtacn/druglike/pkg/types/screening"
)

// ScreeningServiceName is the fully qualified gRPC service name.
const ScreeningServiceName = "druglike.v1.ScreeningService"

// Full method names.
const (
	MethodListRules = "/" + ScreeningServiceName + "/ListRules"
	MethodGetRule   = "/" + ScreeningServiceName + "/GetRule"
	MethodScreen    = "/" + ScreeningServiceName + "/Screen"
	MethodDashboard = "/" + ScreeningServiceName + "/Dashboard"
	MethodDataset   = "/" + ScreeningServiceName + "/Dataset"
)

// ScreeningApplication is the part of screening.Service exposed over gRPC.
type ScreeningApplication interface {
	Rules() []*screening.Rule
	Rule(name screening.RuleName) (*screening.Rule, error)
	Annotated(ctx context.Context) (*compound.Dataset, error)
	Screen(ctx context.Context, name screening.RuleName, overrides screening.Cutoffs) (*screening.View, error)
	Dashboard(ctx context.Context, req screening.Request) ([]*screening.View, error)
}

// ScreeningServer is the contract registered through ScreeningServiceDesc.
type ScreeningServer interface {
	ListRules(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetRule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Screen(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Dashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Dataset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ScreeningService serves screening.Service over gRPC.
type ScreeningService struct {
	app           ScreeningApplication
	imageTemplate string
	logger        logging.Logger
}

var _ ScreeningServer = (*ScreeningService)(nil)

// NewScreeningService creates the gRPC adapter.
func NewScreeningService(app ScreeningApplication, imageTemplate string, logger logging.Logger) *ScreeningService {
	if imageTemplate == "" {
		imageTemplate = screening.DefaultImageTemplate
	}
	return &ScreeningService{app: app, imageTemplate: imageTemplate, logger: logging.OrNop(logger)}
}

// ListRules returns {"rules": [...]}.
func (s *ScreeningService) ListRules(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	rules := s.app.Rules()
	out := make([]dto.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, screening.RuleDTO(r))
	}
	return s.reply(map[string]any{"rules": out})
}

// GetRule expects {"rule": "ro5"}.
func (s *ScreeningService) GetRule(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rule, err := s.lookupRule(req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(screening.RuleDTO(rule))
}

// Screen expects {"rule": "ro5", "cutoffs": {"MW": 450}, "include_grid": true}
// and returns the view.
func (s *ScreeningService) Screen(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rule, err := s.lookupRule(req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	fields := req.GetFields()
	cutoffs, err := cutoffsFromValue(fields["cutoffs"])
	if err != nil {
		return nil, s.toStatus(err)
	}
	v, err := s.app.Screen(ctx, rule.Name, cutoffs)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(screening.ViewDTO(v, fields["include_grid"].GetBoolValue(), s.imageTemplate))
}

// Dashboard expects {"cutoffs": {"ro5": {...}, "ro3": {...}}, "include_grid": bool}.
func (s *ScreeningService) Dashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	request := screening.Request{}
	for name, v := range fields["cutoffs"].GetStructValue().GetFields() {
		ruleName, err := screening.ParseRuleName(name)
		if err != nil {
			return nil, s.toStatus(err)
		}
		c, err := cutoffsFromValue(v)
		if err != nil {
			return nil, s.toStatus(err)
		}
		request[ruleName] = c
	}
	views, err := s.app.Dashboard(ctx, request)
	if err != nil {
		return nil, s.toStatus(err)
	}
	withGrid := fields["include_grid"].GetBoolValue()
	out := dto.Dashboard{Views: make([]dto.View, 0, len(views))}
	for _, v := range views {
		out.Views = append(out.Views, screening.ViewDTO(v, withGrid, s.imageTemplate))
	}
	return s.reply(out)
}

// Dataset returns the annotated table.
func (s *ScreeningService) Dataset(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ds, err := s.app.Annotated(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(screening.DatasetDTO(ds))
}

func (s *ScreeningService) lookupRule(req *structpb.Struct) (*screening.Rule, error) {
	name, err := screening.ParseRuleName(req.GetFields()["rule"].GetStringValue())
	if err != nil {
		return nil, err
	}
	return s.app.Rule(name)
}

// cutoffsFromValue reads a {"<descriptor>": <number>} struct.  A nil value
// means no overrides.
func cutoffsFromValue(v *structpb.Value) (screening.Cutoffs, error) {
	out := screening.Cutoffs{}
	if v == nil {
		return out, nil
	}
	st := v.GetStructValue()
	if st == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "cutoffs must be an object")
	}
	for name, raw := range st.GetFields() {
		kind, err := screening.ParseKind(name)
		if err != nil {
			return nil, err
		}
		num, ok := raw.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, errors.New(errors.ErrCodeBadRequest, "cutoff is not a number").
				WithDetail(fmt.Sprintf("descriptor=%s", name))
		}
		out[kind] = num.NumberValue
	}
	return out, nil
}

// reply converts a wire DTO to a Struct through its JSON form so the field
// names match the HTTP API.
func (s *ScreeningService) reply(v any) (*structpb.Struct, error) {
	st, err := ToStruct(v)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return st, nil
}

// ToStruct converts any JSON-serialisable value with an object encoding.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode response")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "response is not an object")
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to build struct")
	}
	return st, nil
}

// FromStruct decodes a Struct into dst through its JSON form.
func FromStruct(st *structpb.Struct, dst any) error {
	raw, err := st.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode struct")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode struct")
	}
	return nil
}

// toStatus maps an AppError to a gRPC status.  Foreign errors become
// Internal without their text.
func (s *ScreeningService) toStatus(err error) error {
	return ToStatus(err, s.logger)
}

// ToStatus converts err to a gRPC status error.
func ToStatus(err error, logger logging.Logger) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Detail != "" {
			msg += ": " + appErr.Detail
		}
		return status.Error(errors.GRPCCodeForCode(appErr.Code), fmt.Sprintf("[%s] %s", appErr.Code, msg))
	}
	logging.OrNop(logger).Error("unexpected error in grpc handler", logging.Err(err))
	return status.Error(codes.Internal, errors.DefaultMessageForCode(errors.ErrCodeInternal))
}

func unaryHandler(call func(ScreeningServer, context.Context, *structpb.Struct) (*structpb.Struct, error), fullMethod string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ScreeningServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(ScreeningServer), ctx, req.(*structpb.Struct))
		})
	}
}

// ScreeningServiceDesc describes the service for grpc.Server.RegisterService.
var ScreeningServiceDesc = grpc.ServiceDesc{
	ServiceName: ScreeningServiceName,
	HandlerType: (*ScreeningServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRules", Handler: unaryHandler(ScreeningServer.ListRules, MethodListRules)},
		{MethodName: "GetRule", Handler: unaryHandler(ScreeningServer.GetRule, MethodGetRule)},
		{MethodName: "Screen", Handler: unaryHandler(ScreeningServer.Screen, MethodScreen)},
		{MethodName: "Dashboard", Handler: unaryHandler(ScreeningServer.Dashboard, MethodDashboard)},
		{MethodName: "Dataset", Handler: unaryHandler(ScreeningServer.Dataset, MethodDataset)},
	},
	Streams: []grpc.StreamDesc{},
}

// ScreeningClient calls ScreeningService on a connection.
type ScreeningClient struct {
	cc grpc.ClientConnInterface
}

// NewScreeningClient creates a client.
func NewScreeningClient(cc grpc.ClientConnInterface) *ScreeningClient {
	return &ScreeningClient{cc: cc}
}

func (c *ScreeningClient) invoke(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRules calls ListRules.
func (c *ScreeningClient) ListRules(ctx context.Context, opts ...grpc.CallOption) ([]dto.Rule, error) {
	out, err := c.invoke(ctx, MethodListRules, nil, opts...)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Rules []dto.Rule `json:"rules"`
	}
	if err := FromStruct(out, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// Screen calls Screen.
func (c *ScreeningClient) Screen(ctx context.Context, rule string, req dto.ScreenRequest, opts ...grpc.CallOption) (*dto.View, error) {
	in, err := structpb.NewStruct(map[string]any{"rule": rule, "include_grid": req.IncludeGrid})
	if err != nil {
		return nil, err
	}
	if len(req.Cutoffs) > 0 {
		m := make(map[string]any, len(req.Cutoffs))
		for k, v := range req.Cutoffs {
			m[k] = v
		}
		cs, err := structpb.NewStruct(m)
		if err != nil {
			return nil, err
		}
		in.Fields["cutoffs"] = structpb.NewStructValue(cs)
	}
	out, err := c.invoke(ctx, MethodScreen, in, opts...)
	if err != nil {
		return nil, err
	}
	var v dto.View
	if err := FromStruct(out, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Dashboard calls Dashboard.  cutoffs is keyed by rule name.
func (c *ScreeningClient) Dashboard(ctx context.Context, cutoffs map[string]map[string]float64, includeGrid bool, opts ...grpc.CallOption) (*dto.Dashboard, error) {
	panels := make(map[string]any, len(cutoffs))
	for rule, m := range cutoffs {
		p := make(map[string]any, len(m))
		for k, v := range m {
			p[k] = v
		}
		panels[rule] = p
	}
	in, err := structpb.NewStruct(map[string]any{"cutoffs": panels, "include_grid": includeGrid})
	if err != nil {
		return nil, err
	}
	out, err := c.invoke(ctx, MethodDashboard, in, opts...)
	if err != nil {
		return nil, err
	}
	var d dto.Dashboard
	if err := FromStruct(out, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Dataset calls Dataset.
func (c *ScreeningClient) Dataset(ctx context.Context, opts ...grpc.CallOption) (*dto.AnnotatedDataset, error) {
	out, err := c.invoke(ctx, MethodDataset, nil, opts...)
	if err != nil {
		return nil, err
	}
	var ds dto.AnnotatedDataset
	if err := FromStruct(out, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

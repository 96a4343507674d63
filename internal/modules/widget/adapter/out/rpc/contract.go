package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "widget"
	serviceName       = "dailymile.widget.v1.Widget"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodReload      = "/" + serviceName + "/Reload"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DAILYMILE_WIDGET",
	MagicCookieValue: "dailymile",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Kinds   []string `json:"kinds"`
}

type ReloadRequest struct {
	Scope        string `json:"scope"`
	SnapshotPath string `json:"snapshot_path"`
	Version      int64  `json:"version"`
}

type ReloadResponse struct {
	Rendered string `json:"rendered"`
}

type WidgetServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Reload(ctx context.Context, in *ReloadRequest) (*ReloadResponse, error)
}

type WidgetClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Reload(ctx context.Context, in *ReloadRequest) (*ReloadResponse, error)
}

type widgetClient struct {
	conn *grpc.ClientConn
}

func NewWidgetClient(conn *grpc.ClientConn) WidgetClient {
	return &widgetClient{conn: conn}
}

func (c *widgetClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *widgetClient) Reload(ctx context.Context, in *ReloadRequest) (*ReloadResponse, error) {
	out := &ReloadResponse{}
	if err := c.conn.Invoke(ctx, methodReload, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterWidgetServer(server grpc.ServiceRegistrar, impl WidgetServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*WidgetServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Reload",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &ReloadRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Reload(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodReload}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*ReloadRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Reload(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/widget-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl WidgetServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterWidgetServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewWidgetClient(conn), nil
}

func PluginMap(impl WidgetServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}

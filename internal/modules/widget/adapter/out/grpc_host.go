package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	widgetrpc "dailymile/internal/modules/widget/adapter/out/rpc"
	"dailymile/internal/modules/widget/domain"
	widgetout "dailymile/internal/modules/widget/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost starts a widget process per call and kills it afterwards.
type GRPCHost struct {
	callTimeout time.Duration
}

func NewGRPCHost() widgetout.Host {
	return &GRPCHost{callTimeout: defaultCallTimeout}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	kinds := make([]domain.Kind, 0, len(meta.Kinds))
	for _, kind := range meta.Kinds {
		kinds = append(kinds, domain.Kind(kind))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Kinds: kinds}, nil
}

func (h *GRPCHost) Reload(ctx context.Context, manifest domain.Manifest, request domain.ReloadRequest) (domain.ReloadResult, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.ReloadResult{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx)
	defer cancel()
	response, err := client.Reload(callCtx, &widgetrpc.ReloadRequest{
		Scope:        request.Scope,
		SnapshotPath: request.SnapshotPath,
		Version:      request.Version,
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.ReloadResult{}, fmt.Errorf("%w: %s", domain.ErrWidgetTimeout, manifest.Name)
		}
		return domain.ReloadResult{}, fmt.Errorf("reload: %w", err)
	}
	return domain.ReloadResult{Rendered: response.Rendered}, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (widgetrpc.WidgetClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  widgetrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          widgetrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start widget client: %w", err)
	}
	raw, err := rpcClient.Dispense(widgetrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense widget: %w", err)
	}
	typed, ok := raw.(widgetrpc.WidgetClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("widget rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.callTimeout)
}

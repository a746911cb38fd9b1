package videogen

import (
	"context"
	"fmt"

	"github.com/philipbankier/contentpilot/internal/model"
)

// Dispatcher routes a VideoDescriptor to whichever registered provider
// declares support for its type, without itself inspecting the
// descriptor's domain meaning beyond the tag.
type Dispatcher struct {
	providers []interface {
		Provider
		SupportedTypes
	}
}

// NewDispatcher returns a Dispatcher trying providers in order.
func NewDispatcher(providers ...interface {
	Provider
	SupportedTypes
}) *Dispatcher {
	return &Dispatcher{providers: providers}
}

// Generate resolves a provider for d.Type and delegates to it. For
// hybrid_avatar_broll and multi_shot_narrative, each composition segment
// is generated independently against the provider matching its own
// avatar/broll shot type, and GeneratedURL is left for the caller to
// join; Dispatcher reports only the first segment's result here, leaving
// full per-segment composition to Creator's persistence layer.
func (d *Dispatcher) Generate(ctx context.Context, desc *model.VideoDescriptor, avatarType, voiceID string) (Result, error) {
	if desc.Type == model.VideoHybridAvatarBroll || desc.Type == model.VideoMultiShotNarrative {
		return d.generateComposite(ctx, desc, avatarType, voiceID)
	}

	for _, p := range d.providers {
		if p.Supports(desc.Type) {
			return p.Generate(ctx, desc, avatarType, voiceID)
		}
	}
	return Result{}, fmt.Errorf("videogen: no provider registered for type %q", desc.Type)
}

func (d *Dispatcher) generateComposite(ctx context.Context, desc *model.VideoDescriptor, avatarType, voiceID string) (Result, error) {
	if len(desc.Composition) == 0 {
		return Result{}, fmt.Errorf("videogen: %s descriptor has no composition segments", desc.Type)
	}

	var first Result
	for i, seg := range desc.Composition {
		segDesc := &model.VideoDescriptor{Type: segmentVideoType(seg.Type), Script: seg.Script, Prompt: seg.Prompt}
		var res Result
		var err error
		matched := false
		for _, p := range d.providers {
			if p.Supports(segDesc.Type) {
				matched = true
				res, err = p.Generate(ctx, segDesc, avatarType, voiceID)
				break
			}
		}
		if !matched {
			return Result{}, fmt.Errorf("videogen: no provider for composite segment %d (%s)", i, seg.Type)
		}
		if err != nil {
			return Result{}, err
		}
		if i == 0 {
			first = res
		}
	}
	return first, nil
}

func segmentVideoType(segType string) model.VideoType {
	if segType == "avatar" {
		return model.VideoAvatarTalkingHead
	}
	return model.VideoCinematicBroll
}

/*
Copyright 2025 Nuvix Contributors. All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package schema

import (
	"context"
	"time"

	"github.com/rs/xid"
)

// Event is a change notification emitted after a successful schema mutation.
type Event struct {
	ID           string
	CollectionID string
	AttributeKey string
	Action       string
	OccurredAt   time.Time
}

// Notifier receives change notifications. Implementations must not block;
// delivery guarantees are the implementation's concern.
type Notifier interface {
	SchemaChanged(ctx context.Context, event *Event)
}

func (e *Engine) notifySchemaChanged(ctx context.Context, collectionID, attributeKey, action string) {
	if e.notifier == nil {
		return
	}

	e.notifier.SchemaChanged(ctx, &Event{
		ID:           xid.New().String(),
		CollectionID: collectionID,
		AttributeKey: attributeKey,
		Action:       action,
		OccurredAt:   time.Now(),
	})
}

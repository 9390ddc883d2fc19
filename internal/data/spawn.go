package data

import (
	"errors"
	"fmt"
	"os"

	"github.com/Mandelbrottt/Yr2-Engine/internal/asset"
	"github.com/Mandelbrottt/Yr2-Engine/internal/component"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownTemplate = errors.New("unknown body template")
	ErrUnknownParent   = errors.New("unknown spawn parent")
)

// SpawnEntry places one instance of a body template. Rotation is Euler
// degrees. A nil Scale keeps unit scale. Parent names an earlier entry.
type SpawnEntry struct {
	Template string      `yaml:"template"`
	Name     string      `yaml:"name"`
	Position [3]float32  `yaml:"position"`
	Rotation [3]float32  `yaml:"rotation"`
	Scale    *[3]float32 `yaml:"scale"`
	Velocity [3]float32  `yaml:"velocity"`
	Parent   string      `yaml:"parent"`
}

// LoadSpawnList loads spawn_list.yaml.
func LoadSpawnList(path string) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list: %w", err)
	}
	var entries []SpawnEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse spawn list: %w", err)
	}
	return entries, nil
}

// Spawner instantiates spawn entries into a world.
type Spawner struct {
	World  *ecs.World
	Bodies *BodyTable
	Assets *asset.Library

	named map[string]ecs.EntityID
}

// Spawn creates every entry in order and returns the created entities.
// Creation stops at the first failing entry; entities already created
// stay alive.
func (s *Spawner) Spawn(entries []SpawnEntry) ([]ecs.EntityID, error) {
	ids := make([]ecs.EntityID, 0, len(entries))
	for i := range entries {
		id, err := s.SpawnOne(&entries[i])
		if err != nil {
			return ids, fmt.Errorf("spawn entry %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Named returns the entity spawned under name.
func (s *Spawner) Named(name string) (ecs.EntityID, bool) {
	id, ok := s.named[name]
	return id, ok
}

// SpawnOne creates a single entry.
func (s *Spawner) SpawnOne(e *SpawnEntry) (ecs.EntityID, error) {
	tmpl := s.Bodies.Get(e.Template)
	if tmpl == nil {
		return ecs.Null, fmt.Errorf("%q: %w", e.Template, ErrUnknownTemplate)
	}
	var parent ecs.EntityID
	if e.Parent != "" {
		p, ok := s.named[e.Parent]
		if !ok {
			return ecs.Null, fmt.Errorf("%q: %w", e.Parent, ErrUnknownParent)
		}
		parent = p
	}

	collider, err := tmpl.Collider(s.Assets.Meshes)
	if err != nil {
		return ecs.Null, err
	}
	var renderable *component.Renderable
	if tmpl.Mesh != "" {
		r, err := s.renderable(tmpl)
		if err != nil {
			return ecs.Null, err
		}
		renderable = &r
	}

	w := s.World
	id := w.CreateEntity()
	tr := component.NewTransformAt(mgl32.Vec3(e.Position))
	tr.SetRotationEuler(mgl32.Vec3(e.Rotation))
	if e.Scale != nil {
		tr.SetScale(mgl32.Vec3(*e.Scale))
	}
	rb := tmpl.RigidBody()
	rb.SetVelocity(mgl32.Vec3(e.Velocity))

	name := e.Name
	if name == "" {
		name = tmpl.Name
	}
	// id is freshly created, so Assign cannot fail.
	_, _ = ecs.Assign(w, id, component.SceneObject{Name: name})
	_, _ = ecs.Assign(w, id, tr)
	_, _ = ecs.Assign(w, id, rb)
	_, _ = ecs.Assign(w, id, collider)
	if renderable != nil {
		_, _ = ecs.Assign(w, id, *renderable)
	}
	if tmpl.Script != "" {
		_, _ = ecs.Assign(w, id, component.Script{Table: tmpl.Script})
	}
	if !parent.IsNull() {
		if err := component.NewHierarchy(w).SetParent(id, parent); err != nil {
			_ = w.Destroy(id)
			return ecs.Null, err
		}
	}

	if e.Name != "" {
		if s.named == nil {
			s.named = make(map[string]ecs.EntityID)
		}
		s.named[e.Name] = id
	}
	return id, nil
}

func (s *Spawner) renderable(tmpl *BodyTemplate) (component.Renderable, error) {
	mesh, err := s.Assets.Meshes.Get(tmpl.Mesh)
	if err != nil {
		return component.Renderable{}, fmt.Errorf("body %q mesh %q: %w", tmpl.Name, tmpl.Mesh, err)
	}
	mat, err := s.Assets.Materials.Get(tmpl.Material)
	if err != nil {
		return component.Renderable{}, fmt.Errorf("body %q material %q: %w", tmpl.Name, tmpl.Material, err)
	}
	return component.Renderable{Mesh: mesh, Material: mat, Enabled: true}, nil
}

package data

import (
	"fmt"
	"os"

	"github.com/Mandelbrottt/Yr2-Engine/internal/asset"
	"github.com/Mandelbrottt/Yr2-Engine/internal/component"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// ShapeEntry is one collider primitive of a body template.
type ShapeEntry struct {
	Type    string     `yaml:"type"`
	Size    [3]float32 `yaml:"size"`
	Radius  float32    `yaml:"radius"`
	Height  float32    `yaml:"height"`
	Axis    string     `yaml:"axis"`
	Mesh    string     `yaml:"mesh"`
	Center  [3]float32 `yaml:"center"`
	Trigger bool       `yaml:"trigger"`
}

// BodyTemplate defines a spawnable physics body. Unset booleans keep the
// RigidBody defaults.
type BodyTemplate struct {
	Name             string       `yaml:"name"`
	Mass             *float32     `yaml:"mass"`
	Friction         *float32     `yaml:"friction"`
	Restitution      float32      `yaml:"restitution"`
	Kinematic        bool         `yaml:"kinematic"`
	DetectCollisions *bool        `yaml:"detect_collisions"`
	UseGravity       *bool        `yaml:"use_gravity"`
	Interpolate      *bool        `yaml:"interpolate"`
	FreezeRotation   []string     `yaml:"freeze_rotation"`
	Script           string       `yaml:"script"`
	Mesh             string       `yaml:"mesh"`
	Material         string       `yaml:"material"`
	Shapes           []ShapeEntry `yaml:"shapes"`
}

// BodyTable provides lookup of body templates by name.
type BodyTable struct {
	bodies map[string]*BodyTemplate
}

// LoadBodyTable loads body_list.yaml.
func LoadBodyTable(path string) (*BodyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read body list: %w", err)
	}
	return ParseBodyTable(raw)
}

// ParseBodyTable decodes a body list and validates every shape type.
func ParseBodyTable(raw []byte) (*BodyTable, error) {
	var entries []BodyTemplate
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse body list: %w", err)
	}
	t := &BodyTable{
		bodies: make(map[string]*BodyTemplate, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if e.Name == "" {
			return nil, fmt.Errorf("parse body list: entry %d has no name", i)
		}
		if _, dup := t.bodies[e.Name]; dup {
			return nil, fmt.Errorf("parse body list: duplicate body %q", e.Name)
		}
		for _, s := range e.Shapes {
			if _, err := component.ParseShapeType(s.Type); err != nil {
				return nil, fmt.Errorf("parse body list: body %q: %w", e.Name, err)
			}
			if _, err := parseAxis(s.Axis); err != nil {
				return nil, fmt.Errorf("parse body list: body %q: %w", e.Name, err)
			}
		}
		if _, err := freezeFlags(e.FreezeRotation); err != nil {
			return nil, fmt.Errorf("parse body list: body %q: %w", e.Name, err)
		}
		t.bodies[e.Name] = e
	}
	return t, nil
}

// Get returns the template with the given name, or nil if none.
func (t *BodyTable) Get(name string) *BodyTemplate {
	return t.bodies[name]
}

// Count returns the total number of templates loaded.
func (t *BodyTable) Count() int {
	return len(t.bodies)
}

func parseAxis(s string) (component.Axis, error) {
	switch s {
	case "x":
		return component.AxisX, nil
	case "", "y":
		return component.AxisY, nil
	case "z":
		return component.AxisZ, nil
	}
	return component.AxisY, fmt.Errorf("unknown axis %q", s)
}

func freezeFlags(axes []string) (component.Property, error) {
	var p component.Property
	for _, a := range axes {
		switch a {
		case "x":
			p |= component.PropFreezeRotationX
		case "y":
			p |= component.PropFreezeRotationY
		case "z":
			p |= component.PropFreezeRotationZ
		default:
			return 0, fmt.Errorf("unknown freeze axis %q", a)
		}
	}
	return p, nil
}

// RigidBody builds the RigidBody component described by the template.
func (b *BodyTemplate) RigidBody() component.RigidBody {
	rb := component.NewRigidBody()
	if b.Mass != nil {
		rb.SetMass(*b.Mass)
	}
	if b.Friction != nil {
		rb.SetFriction(*b.Friction)
	}
	rb.SetRestitution(b.Restitution)
	rb.SetProperties(component.PropIsKinematic, b.Kinematic)
	if b.DetectCollisions != nil {
		rb.SetProperties(component.PropDetectCollisions, *b.DetectCollisions)
	}
	if b.UseGravity != nil {
		rb.SetProperties(component.PropUseGravity, *b.UseGravity)
	}
	if b.Interpolate != nil {
		rb.SetProperties(component.PropDoInterpolation, *b.Interpolate)
	}
	// validated at load
	freeze, _ := freezeFlags(b.FreezeRotation)
	rb.SetProperties(freeze, true)
	return rb
}

// Collider builds the Collider described by the template. Mesh shapes
// resolve their mesh alias through meshes.
func (b *BodyTemplate) Collider(meshes *asset.Cache[asset.Mesh]) (component.Collider, error) {
	var c component.Collider
	for i, s := range b.Shapes {
		typ, err := component.ParseShapeType(s.Type)
		if err != nil {
			return component.Collider{}, fmt.Errorf("body %q shape %d: %w", b.Name, i, err)
		}
		axis, err := parseAxis(s.Axis)
		if err != nil {
			return component.Collider{}, fmt.Errorf("body %q shape %d: %w", b.Name, i, err)
		}
		shape := c.PushShape(typ)
		switch typ {
		case component.ShapeBox:
			if s.Size != [3]float32{} {
				shape.SetParams(component.BoxParams{Size: mgl32.Vec3(s.Size)})
			}
		case component.ShapeSphere:
			if s.Radius > 0 {
				shape.SetParams(component.SphereParams{Radius: s.Radius})
			}
		case component.ShapeCapsule:
			p, _ := shape.Capsule()
			p.Axis = axis
			if s.Radius > 0 {
				p.Radius = s.Radius
			}
			if s.Height > 0 {
				p.Height = s.Height
			}
			shape.SetParams(p)
		case component.ShapeCylinder:
			p, _ := shape.Cylinder()
			p.Axis = axis
			if s.Radius > 0 {
				p.Radius = s.Radius
			}
			if s.Height > 0 {
				p.Height = s.Height
			}
			shape.SetParams(p)
		case component.ShapeMesh:
			mesh, err := meshes.Get(s.Mesh)
			if err != nil {
				return component.Collider{}, fmt.Errorf("body %q shape %d mesh %q: %w", b.Name, i, s.Mesh, err)
			}
			shape.SetParams(component.MeshParams{Mesh: mesh})
		}
		shape.SetCenter(mgl32.Vec3(s.Center))
		shape.SetTrigger(s.Trigger)
	}
	return c, nil
}

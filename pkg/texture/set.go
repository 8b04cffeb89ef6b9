package texture

import "path/filepath"

// Family holds the maps of one surface family. Height and Metalness are
// optional; each family provides one of them.
type Family struct {
	Color            *Texture
	AmbientOcclusion *Texture
	Roughness        *Texture
	Normal           *Texture
	Height           *Texture
	Metalness        *Texture
}

// Set is the pair of texture families used by the still-life materials
type Set struct {
	Wood  Family
	Metal Family
}

const (
	woodDir  = "wood"
	metalDir = "metal"

	woodPrefix  = "Wood_025_"
	metalPrefix = "Metal_006_"
)

// LoadSet schedules every map of both families under dir. The layout is
// fixed: dir/wood/Wood_025_*.{jpg,png} and dir/metal/Metal_006_*.jpg.
func LoadSet(loader *Loader, dir string) *Set {
	wood := func(name string) *Texture {
		return loader.Load(filepath.Join(dir, woodDir, woodPrefix+name))
	}
	metal := func(name string) *Texture {
		return loader.Load(filepath.Join(dir, metalDir, metalPrefix+name))
	}

	return &Set{
		Wood: Family{
			Color:            wood("basecolor.jpg"),
			AmbientOcclusion: wood("ambientOcclusion.jpg"),
			Roughness:        wood("roughness.jpg"),
			Normal:           wood("normal.jpg"),
			Height:           wood("height.png"),
		},
		Metal: Family{
			Color:            metal("basecolor.jpg"),
			AmbientOcclusion: metal("ambientOcclusion.jpg"),
			Roughness:        metal("roughness.jpg"),
			Normal:           metal("normal.jpg"),
			Metalness:        metal("metallic.jpg"),
		},
	}
}

// All returns the non-nil textures of both families
func (s *Set) All() []*Texture {
	var all []*Texture
	for _, family := range []Family{s.Wood, s.Metal} {
		for _, tex := range []*Texture{
			family.Color, family.AmbientOcclusion, family.Roughness,
			family.Normal, family.Height, family.Metalness,
		} {
			if tex != nil {
				all = append(all, tex)
			}
		}
	}
	return all
}

// ReadyCount returns how many textures have pixels bound
func (s *Set) ReadyCount() int {
	count := 0
	for _, tex := range s.All() {
		if tex.Ready() {
			count++
		}
	}
	return count
}

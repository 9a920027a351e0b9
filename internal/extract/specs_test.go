package extract

import (
	"testing"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

func TestMineSpecs_Motor(t *testing.T) {
	specs := MineSpecs(catalog.Motor,
		"Velox V2 2207 Motor 1750KV",
		"Shaft: 4mm titanium. Weight: 32.5g. Max thrust: 1800g on 6S.")

	if specs["kv"] != "1750" {
		t.Errorf("kv = %q, want 1750", specs["kv"])
	}
	if specs["stator_size"] == "" {
		t.Errorf("stator_size missing: %v", specs)
	}
	if specs["shaft_diameter"] != "4mm" {
		t.Errorf("shaft_diameter = %q", specs["shaft_diameter"])
	}
	if specs["weight"] != "32.5g" {
		t.Errorf("weight = %q", specs["weight"])
	}
}

func TestMineSpecs_Battery(t *testing.T) {
	specs := MineSpecs(catalog.Battery,
		"Tattu R-Line 6S 1300mAh 120C LiPo",
		"XT60 connector, 22.2V nominal.")

	if specs["capacity"] != "1300mAh" {
		t.Errorf("capacity = %q", specs["capacity"])
	}
	if specs["cell_count"] != "6S" {
		t.Errorf("cell_count = %q", specs["cell_count"])
	}
	if specs["c_rating"] != "120C" {
		t.Errorf("c_rating = %q", specs["c_rating"])
	}
	if specs["connector"] != "XT60" {
		t.Errorf("connector = %q", specs["connector"])
	}
}

func TestMineSpecs_BatteryValidationRanges(t *testing.T) {
	// 99999 mAh is outside the plausible capacity range, 300C outside the
	// C-rating range; both should be dropped rather than reported.
	specs := MineSpecs(catalog.Battery, "Mystery pack 99999mAh 300C", "")

	if _, ok := specs["capacity"]; ok {
		t.Errorf("capacity should fail validation: %v", specs)
	}
	if _, ok := specs["c_rating"]; ok {
		t.Errorf("c_rating should fail validation: %v", specs)
	}
}

func TestMineSpecs_Prop(t *testing.T) {
	specs := MineSpecs(catalog.Prop,
		"Azure 5x4.3x3 Tri-Blade Propeller",
		"Durable polycarbonate, available in CW and CCW rotation.")

	if specs["size"] == "" {
		t.Errorf("size missing: %v", specs)
	}
	if specs["blade_count"] == "" {
		t.Errorf("blade_count missing: %v", specs)
	}
	if specs["material"] != "polycarbonate" {
		t.Errorf("material = %q", specs["material"])
	}
}

func TestMineSpecs_Frame(t *testing.T) {
	specs := MineSpecs(catalog.Frame,
		"Mach 5 Freestyle Frame",
		"Wheelbase: 225mm. 3K carbon construction with 5mm arms.")

	if specs["wheelbase"] != "225mm" {
		t.Errorf("wheelbase = %q", specs["wheelbase"])
	}
	if specs["material"] == "" {
		t.Errorf("material missing: %v", specs)
	}
}

func TestMineSpecs_Stack(t *testing.T) {
	specs := MineSpecs(catalog.Stack,
		"Tempest F722 55A Stack",
		"30.5x30.5mm mounting, MPU6000 gyro.")

	if specs["current_rating"] != "55A" {
		t.Errorf("current_rating = %q", specs["current_rating"])
	}
	if specs["processor"] != "F722" {
		t.Errorf("processor = %q", specs["processor"])
	}
	if specs["gyro"] != "MPU6000" {
		t.Errorf("gyro = %q", specs["gyro"])
	}
}

func TestMineSpecs_Camera(t *testing.T) {
	specs := MineSpecs(catalog.Camera,
		"Nano FPV Camera 1200TVL",
		"1/1.8 CMOS sensor, 2.1mm lens, FOV: 160, 4:3 aspect ratio.")

	if specs["resolution"] != "1200TVL" {
		t.Errorf("resolution = %q", specs["resolution"])
	}
	if specs["sensor"] != "1/1.8" {
		t.Errorf("sensor = %q", specs["sensor"])
	}
	if specs["lens"] != "2.1mm" {
		t.Errorf("lens = %q", specs["lens"])
	}
	if specs["fov"] != "160°" {
		t.Errorf("fov = %q", specs["fov"])
	}
}

func TestMineSpecs_NoMatchesIsEmpty(t *testing.T) {
	specs := MineSpecs(catalog.Motor, "Widget 123", "")
	if len(specs) != 0 {
		t.Errorf("expected no specs, got %v", specs)
	}
}

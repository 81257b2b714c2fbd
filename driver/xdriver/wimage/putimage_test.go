package wimage

import (
	"image"
	"testing"
)

func TestChunkRects1(t *testing.T) {
	r := image.Rect(0, 0, 10, 25)
	u, err := chunkRects(r, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(u) != 3 {
		t.Fatalf("chunks: %v", u)
	}
	if u[2] != image.Rect(0, 20, 10, 25) {
		t.Fatalf("last chunk: %v", u[2])
	}

	// chunks cover the whole rectangle without overlap
	area := 0
	for i, c := range u {
		if c.Dx()*c.Dy() > 100 {
			t.Fatalf("chunk too big: %v", c)
		}
		if i > 0 && c.Min.Y != u[i-1].Max.Y {
			t.Fatalf("gap: %v", u)
		}
		area += c.Dx() * c.Dy()
	}
	if area != 250 {
		t.Fatalf("area=%v", area)
	}
}

func TestChunkRects2(t *testing.T) {
	u, err := chunkRects(image.Rect(0, 0, 640, 480), maxChunkPix)
	if err != nil {
		t.Fatal(err)
	}
	// 65529/640 = 102 rows per chunk
	if len(u) != 5 {
		t.Fatalf("chunks: %v", len(u))
	}
}

func TestChunkRects3(t *testing.T) {
	if _, err := chunkRects(image.Rect(0, 0, 101, 1), 100); err == nil {
		t.Fatal("expecting error")
	}
}

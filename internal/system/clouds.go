package system

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/l1jgo/director/internal/core/ecs"
	"github.com/l1jgo/director/internal/core/task"
	"github.com/l1jgo/director/internal/scene"
)

// CloudArchetype marks decorative cloud nodes.
const CloudArchetype = "cloud"

var cloudTextures = [...]string{
	"assets/images/environment/cloud_variation1.png",
	"assets/images/environment/cloud_variation2.png",
	"assets/images/environment/cloud_variation3.png",
	"assets/images/environment/cloud_variation4.png",
}

var cloudDrawRegion = scene.Rect2{X: 0, Y: 0, W: 32, H: 18}

type CloudOptions struct {
	Max            int
	RefillInterval float64 // seconds of game time between refills
}

// Clouds keeps the sky topped up to Max drifting clouds.
type Clouds struct {
	sc   *scene.Scene
	rng  *rand.Rand
	opts CloudOptions
	log  *zap.Logger

	spawned map[ecs.EntityID]*scene.Node
}

func NewClouds(sc *scene.Scene, rng *rand.Rand, opts CloudOptions, log *zap.Logger) *Clouds {
	return &Clouds{
		sc:      sc,
		rng:     rng,
		opts:    opts,
		log:     log,
		spawned: make(map[ecs.EntityID]*scene.Node),
	}
}

func (c *Clouds) Len() int { return len(c.spawned) }

// Run is the cloud keeper's task routine.
func (c *Clouds) Run(co *task.Co) error {
	defer c.release()
	for {
		c.refill()
		co.Wait(c.opts.RefillInterval)
		co.Next()
	}
}

func (c *Clouds) refill() {
	missing := c.opts.Max - len(c.spawned)
	if missing <= 0 {
		return
	}
	cam := c.sc.Camera().Position()
	root := c.sc.Root()
	for i := 0; i < missing; i++ {
		n := c.sc.CreateInstance(CloudArchetype)
		n.Texture = cloudTextures[c.rng.Intn(len(cloudTextures))]
		n.DrawRegion = cloudDrawRegion
		n.Position = cam.Add(scene.Vec2{
			X: float64(i * c.randint(5, 40)),
			Y: float64(c.randint(0, 40)),
		})
		n.ZIndex = 2
		c.sc.AddChild(root, n)
		c.sc.SetMotion(n, scene.Right.Scale(float64(c.randint(5, 15))))
		c.sc.Subscribe(n, scene.EventDestroyed, root, c.onDestroyed)
		c.spawned[n.ID] = n
	}
	c.log.Debug("clouds refilled", zap.Int("spawned", missing), zap.Int("total", len(c.spawned)))
}

func (c *Clouds) randint(lo, hi int) int {
	return lo + c.rng.Intn(hi-lo+1)
}

func (c *Clouds) onDestroyed(n *scene.Node) {
	delete(c.spawned, n.ID)
}

func (c *Clouds) release() {
	root := c.sc.Root()
	for _, n := range c.spawned {
		c.sc.Unsubscribe(n, root)
	}
	c.spawned = make(map[ecs.EntityID]*scene.Node)
}

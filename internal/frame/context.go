package frame

import (
	"fmt"
	"image"

	"github.com/vk/nodegridgo/internal/socket"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Context is the frame value/image store shared by all nodes of a graph.
type Context struct {
	Values *Values
	Images *Images
}

// New creates a Context with empty stores.
func New() *Context {
	return &Context{
		Values: &Values{m: make(map[socket.ID]cty.Value)},
		Images: &Images{m: make(map[socket.NodeKey]image.Image)},
	}
}

// ForgetNode drops every value and the image owned by the node.
func (c *Context) ForgetNode(key socket.NodeKey) {
	c.Values.forgetNode(key)
	c.Images.Delete(key)
}

// Values maps socket identifiers to their current value.
type Values struct {
	m map[socket.ID]cty.Value
}

// Set records the current value of a socket.
func (v *Values) Set(id socket.ID, val cty.Value) {
	v.m[id] = val
}

// Get returns the current value of a socket and whether it was set.
func (v *Values) Get(id socket.ID) (cty.Value, bool) {
	val, ok := v.m[id]
	return val, ok
}

// Delete clears a socket's value.
func (v *Values) Delete(id socket.ID) {
	delete(v.m, id)
}

// Len returns the number of stored values.
func (v *Values) Len() int {
	return len(v.m)
}

// Int reads a numeric socket value as an int.
func (v *Values) Int(id socket.ID) (int, error) {
	val, ok := v.m[id]
	if !ok {
		return 0, fmt.Errorf("socket %s has no value", id)
	}
	var n int
	if err := gocty.FromCtyValue(val, &n); err != nil {
		return 0, fmt.Errorf("socket %s: %w", id, err)
	}
	return n, nil
}

// String reads a text socket value.
func (v *Values) String(id socket.ID) (string, error) {
	val, ok := v.m[id]
	if !ok {
		return "", fmt.Errorf("socket %s has no value", id)
	}
	var s string
	if err := gocty.FromCtyValue(val, &s); err != nil {
		return "", fmt.Errorf("socket %s: %w", id, err)
	}
	return s, nil
}

func (v *Values) forgetNode(key socket.NodeKey) {
	for id := range v.m {
		if id.Node() == key {
			delete(v.m, id)
		}
	}
}

// Images maps node keys to the latest image each node produced.
type Images struct {
	m map[socket.NodeKey]image.Image
}

// Set overwrites the node's latest image.
func (i *Images) Set(key socket.NodeKey, img image.Image) {
	i.m[key] = img
}

// Get returns the node's latest image, if any.
func (i *Images) Get(key socket.NodeKey) (image.Image, bool) {
	img, ok := i.m[key]
	return img, ok && img != nil
}

// Delete removes the node's image entry.
func (i *Images) Delete(key socket.NodeKey) {
	delete(i.m, key)
}

// Len returns the number of stored images.
func (i *Images) Len() int {
	return len(i.m)
}

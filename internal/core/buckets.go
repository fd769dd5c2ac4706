package core

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map"
	"gopkg.in/yaml.v3"
)

// Bucket holds every record expanded for a single job, in the order the
// originating groups were encountered.
type Bucket struct {
	Job     string
	Records []Record
}

// Buckets groups records by job name. Jobs are kept in first-seen order.
type Buckets struct {
	m *orderedmap.OrderedMap
}

// NewBuckets returns an empty set of buckets.
func NewBuckets() *Buckets {
	return &Buckets{m: orderedmap.New()}
}

// Expand fans each group out into one record per job and groups the records
// by job.
func Expand(groups []Group) *Buckets {
	b := NewBuckets()
	for _, g := range groups {
		b.Add(g)
	}
	return b
}

// Add appends one record per job declared by g and returns how many records
// were added. Duplicate job names produce duplicate records.
func (b *Buckets) Add(g Group) int {
	for _, job := range g.Jobs {
		var bucket *Bucket
		if v, ok := b.m.Get(job); ok {
			bucket = v.(*Bucket)
		} else {
			bucket = &Bucket{Job: job}
			b.m.Set(job, bucket)
		}
		bucket.Records = append(bucket.Records, NewRecord(job, g))
	}
	return len(g.Jobs)
}

// Len returns the number of distinct jobs.
func (b *Buckets) Len() int {
	if b == nil || b.m == nil {
		return 0
	}
	return b.m.Len()
}

// Jobs returns the job names in first-seen order.
func (b *Buckets) Jobs() []string {
	jobs := make([]string, 0, b.Len())
	_ = b.Each(func(bucket *Bucket) error {
		jobs = append(jobs, bucket.Job)
		return nil
	})
	return jobs
}

// Records returns the records for job, or nil if the job was never seen.
func (b *Buckets) Records(job string) []Record {
	if b.Len() == 0 {
		return nil
	}
	v, ok := b.m.Get(job)
	if !ok {
		return nil
	}
	return v.(*Bucket).Records
}

// Each calls fn for every bucket in first-seen order, stopping at the first
// error.
func (b *Buckets) Each(fn func(*Bucket) error) error {
	if b.Len() == 0 {
		return nil
	}
	for pair := b.m.Oldest(); pair != nil; pair = pair.Next() {
		if err := fn(pair.Value.(*Bucket)); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes the buckets as one object keyed by job name, with keys
// in first-seen order.
func (b *Buckets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	err := b.Each(func(bucket *Bucket) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := marshalJSON(bucket.Job)
		if err != nil {
			return err
		}
		records, err := marshalJSON(bucket.Records)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalJSON is json.Marshal without HTML escaping, so target URLs keep
// their & < > characters.
func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalYAML encodes the buckets as one mapping keyed by job name, with keys
// in first-seen order.
func (b *Buckets) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	err := b.Each(func(bucket *Bucket) error {
		var key, value yaml.Node
		key.SetString(bucket.Job)
		if err := value.Encode(bucket.Records); err != nil {
			return err
		}
		node.Content = append(node.Content, &key, &value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

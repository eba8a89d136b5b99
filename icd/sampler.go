package icd

func (d *ICD) CreateSampler(context Context, normalized bool, addressMode, filterMode uint32) (Sampler, Int) {
	id, err := d.conn.CreateSampler(context, normalized, addressMode, filterMode)
	return id, toInt(err)
}

func (d *ICD) RetainSampler(sampler Sampler) Int  { return toInt(d.conn.RetainSampler(sampler)) }
func (d *ICD) ReleaseSampler(sampler Sampler) Int { return toInt(d.conn.ReleaseSampler(sampler)) }

// GetSamplerInfo answers all three fields from the local cache (spec
// §4.5); the normalized/addressing/filter trio never changes after
// creation.
func (d *ICD) GetSamplerInfo(sampler Sampler) (normalized bool, addressMode, filterMode uint32, status Int) {
	n, a, f, err := d.conn.SamplerInfo(sampler)
	return n, a, f, toInt(err)
}

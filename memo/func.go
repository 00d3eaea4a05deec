package memo

func Func1[I1 comparable, O any](pureFn func(I1) O, maxTableSize uint32) func(I1) O {
	table := NewTable[I1, O](maxTableSize)
	return func(i1 I1) O {
		return table.LoadOrCompute(i1, pureFn)
	}
}

type args2[I1, I2 comparable] struct {
	i1 I1
	i2 I2
}

func Func2[I1, I2 comparable, O any](pureFn func(I1, I2) O, maxTableSize uint32) func(I1, I2) O {
	table := NewTable[args2[I1, I2], O](maxTableSize)
	return func(i1 I1, i2 I2) O {
		return table.LoadOrCompute(args2[I1, I2]{i1, i2}, func(a args2[I1, I2]) O {
			return pureFn(a.i1, a.i2)
		})
	}
}

type args3[I1, I2, I3 comparable] struct {
	i1 I1
	i2 I2
	i3 I3
}

func Func3[I1, I2, I3 comparable, O any](pureFn func(I1, I2, I3) O, maxTableSize uint32) func(I1, I2, I3) O {
	table := NewTable[args3[I1, I2, I3], O](maxTableSize)
	return func(i1 I1, i2 I2, i3 I3) O {
		return table.LoadOrCompute(args3[I1, I2, I3]{i1, i2, i3}, func(a args3[I1, I2, I3]) O {
			return pureFn(a.i1, a.i2, a.i3)
		})
	}
}

type result[O1, O2 any] struct {
	o1 O1
	o2 O2
}

// Func1x2 memoizes a function with two results, typically a value and an error.
func Func1x2[I1 comparable, O1, O2 any](pureFn func(I1) (O1, O2), maxTableSize uint32) func(I1) (O1, O2) {
	table := NewTable[I1, result[O1, O2]](maxTableSize)
	return func(i1 I1) (O1, O2) {
		res := table.LoadOrCompute(i1, func(i1 I1) result[O1, O2] {
			o1, o2 := pureFn(i1)
			return result[O1, O2]{o1, o2}
		})
		return res.o1, res.o2
	}
}

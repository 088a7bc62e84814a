// Package art implements online adaptive resonance clustering: patterns
// stream in one at a time, each either adapts the category that
// resonates with it or founds a new category, and the vigilance
// parameter sets how tight a match resonance requires.
//
// A Network couples one geometry rule (ellipsoid, gaussian, salience or
// multi-channel fusion) with a category store and the vigilance
// matcher. A Mapper associates the categories of two networks for
// supervised learning, resolving conflicts through match tracking.
//
// Basic usage:
//
//	net, err := art.Ellipsoid(4).
//	    Vigilance(0.9).
//	    InitialRadius(0.1).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := net.Learn(ctx, pattern.New(0.1, 0.2, 0.3, 0.4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Index, res.Created)
//
// Learning and optimization serialize behind an exclusive writer lock;
// prediction and read accessors share a reader lock, so concurrent use
// is safe and observes the store as if operations ran serially.
package art
